package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"vexa/models"
	"vexa/utils"
)

func newMembershipEnv(t *testing.T) (*memStore, *MembershipService) {
	t.Helper()
	store := newMemStore()
	return store, NewMembershipService(store, store, testLogger())
}

func TestCreateProject(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatalf("CreateProject returned %v", err)
	}

	if len(project.Members) != 1 {
		t.Fatalf("roster has %d entries, want 1", len(project.Members))
	}
	member := project.Members[0]
	if member.UserID != owner.ID || member.Access != models.AccessOwner || member.Role != "owner" {
		t.Errorf("creator entry = %+v, want owner access for user %d", member, owner.ID)
	}

	// The creator's back-reference must exist as well.
	if !store.mirrors[MemberPair{UserID: owner.ID, ProjectID: project.ID}] {
		t.Error("owner's project reference was not recorded")
	}
}

func TestCreateProjectRequiresTitle(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	_, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{})
	if utils.KindOf(err) != utils.KindValidation {
		t.Errorf("kind = %v, want validation", utils.KindOf(err))
	}
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	editor := store.addUser("bob")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.join(context.Background(), editor.ID, project.ID, models.AccessEditor, "member"); err != nil {
		t.Fatal(err)
	}

	// Editors cannot delete.
	err = svc.DeleteProject(context.Background(), editor.ID, project.ID)
	if utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("editor delete kind = %v, want forbidden", utils.KindOf(err))
	}

	// The owner can, and every member's back-reference goes with it.
	if err := svc.DeleteProject(context.Background(), owner.ID, project.ID); err != nil {
		t.Fatalf("owner delete returned %v", err)
	}
	if store.projects[project.ID] != nil {
		t.Error("project still present after delete")
	}
	for pair := range store.mirrors {
		if pair.ProjectID == project.ID {
			t.Errorf("dangling project reference %+v after delete", pair)
		}
	}
}

func TestDeleteProjectMissing(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	err := svc.DeleteProject(context.Background(), owner.ID, 42)
	if utils.KindOf(err) != utils.KindNotFound {
		t.Errorf("kind = %v, want not found", utils.KindOf(err))
	}
}

func TestUpdateProjectFields(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	outsider := store.addUser("mallory")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo", Description: "old"})
	if err != nil {
		t.Fatal(err)
	}

	title := "Artemis"
	if err := svc.UpdateProjectFields(context.Background(), owner.ID, project.ID, ProjectPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateProjectFields returned %v", err)
	}
	if store.projects[project.ID].Title != "Artemis" {
		t.Errorf("title = %q, want Artemis", store.projects[project.ID].Title)
	}
	// Unsupplied fields stay put.
	if store.projects[project.ID].Description != "old" {
		t.Errorf("description = %q, want old", store.projects[project.ID].Description)
	}

	// An empty patch is a no-op, not an error.
	if err := svc.UpdateProjectFields(context.Background(), owner.ID, project.ID, ProjectPatch{}); err != nil {
		t.Errorf("empty patch returned %v", err)
	}

	empty := ""
	err = svc.UpdateProjectFields(context.Background(), owner.ID, project.ID, ProjectPatch{Title: &empty})
	if utils.KindOf(err) != utils.KindValidation {
		t.Errorf("empty title kind = %v, want validation", utils.KindOf(err))
	}

	err = svc.UpdateProjectFields(context.Background(), outsider.ID, project.ID, ProjectPatch{Title: &title})
	if utils.KindOf(err) != utils.KindForbidden {
		t.Errorf("outsider kind = %v, want forbidden", utils.KindOf(err))
	}
}

func TestUpdateMemberAccess(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	editor := store.addUser("bob")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.join(context.Background(), editor.ID, project.ID, models.AccessEditor, "member"); err != nil {
		t.Fatal(err)
	}

	if err := svc.UpdateMemberAccess(context.Background(), owner.ID, project.ID, editor.ID, models.AccessAdmin, "member"); err != nil {
		t.Fatalf("promote returned %v", err)
	}
	if got := MemberAccess(store.projects[project.ID], editor.ID); got != models.AccessAdmin {
		t.Errorf("access = %v, want Admin", got)
	}

	// Values outside the closed enum are rejected up front.
	err = svc.UpdateMemberAccess(context.Background(), owner.ID, project.ID, editor.ID, models.ParseAccessLevel("Superuser"), "member")
	if utils.KindOf(err) != utils.KindValidation {
		t.Errorf("unknown access kind = %v, want validation", utils.KindOf(err))
	}

	err = svc.UpdateMemberAccess(context.Background(), owner.ID, project.ID, 99, models.AccessEditor, "member")
	if utils.KindOf(err) != utils.KindNotFound {
		t.Errorf("missing member kind = %v, want not found", utils.KindOf(err))
	}
}

func TestUpdateMemberAccessLastOwner(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	second := store.addUser("bob")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}

	// Demoting the only owner would leave the project unmanageable.
	err = svc.UpdateMemberAccess(context.Background(), owner.ID, project.ID, owner.ID, models.AccessEditor, "member")
	if utils.KindOf(err) != utils.KindConflict {
		t.Fatalf("kind = %v, want conflict", utils.KindOf(err))
	}

	// With a second owner the demotion goes through.
	if err := svc.join(context.Background(), second.ID, project.ID, models.AccessOwner, "owner"); err != nil {
		t.Fatal(err)
	}
	if err := svc.UpdateMemberAccess(context.Background(), owner.ID, project.ID, owner.ID, models.AccessEditor, "member"); err != nil {
		t.Fatalf("demote with co-owner returned %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	editor := store.addUser("bob")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.join(context.Background(), editor.ID, project.ID, models.AccessEditor, "member"); err != nil {
		t.Fatal(err)
	}

	if err := svc.RemoveMember(context.Background(), owner.ID, project.ID, editor.ID); err != nil {
		t.Fatalf("RemoveMember returned %v", err)
	}
	if MemberAccess(store.projects[project.ID], editor.ID) != models.AccessNone {
		t.Error("member still on roster after removal")
	}
	if store.mirrors[MemberPair{UserID: editor.ID, ProjectID: project.ID}] {
		t.Error("project reference survived removal")
	}

	err = svc.RemoveMember(context.Background(), owner.ID, project.ID, editor.ID)
	if utils.KindOf(err) != utils.KindNotFound {
		t.Errorf("second removal kind = %v, want not found", utils.KindOf(err))
	}
}

func TestRemoveMemberSelf(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	editor := store.addUser("bob")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.join(context.Background(), editor.ID, project.ID, models.AccessEditor, "member"); err != nil {
		t.Fatal(err)
	}

	// Members may leave on their own.
	if err := svc.RemoveMember(context.Background(), editor.ID, project.ID, editor.ID); err != nil {
		t.Fatalf("self-removal returned %v", err)
	}
}

func TestRemoveMemberLastOwner(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}

	err = svc.RemoveMember(context.Background(), owner.ID, project.ID, owner.ID)
	if utils.KindOf(err) != utils.KindConflict {
		t.Errorf("kind = %v, want conflict", utils.KindOf(err))
	}
}

// TestMirrorConsistencyUnderConcurrency interleaves joins and removals from
// many goroutines and then checks both relation directions agree: every
// roster entry has its back-reference and every back-reference has its roster
// entry.
func TestMirrorConsistencyUnderConcurrency(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}

	const workers = 8
	users := make([]*models.User, workers)
	for i := range users {
		users[i] = store.addUser("user")
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			ctx := context.Background()
			if err := svc.join(ctx, u.ID, project.ID, models.AccessEditor, "member"); err != nil {
				t.Errorf("join(%d) returned %v", u.ID, err)
				return
			}
			if err := svc.RemoveMember(ctx, u.ID, project.ID, u.ID); err != nil {
				t.Errorf("RemoveMember(%d) returned %v", u.ID, err)
				return
			}
			if err := svc.join(ctx, u.ID, project.ID, models.AccessEditor, "member"); err != nil {
				t.Errorf("rejoin(%d) returned %v", u.ID, err)
			}
		}(u)
	}
	wg.Wait()

	roster := make(map[MemberPair]bool)
	for _, m := range store.projects[project.ID].Members {
		roster[MemberPair{UserID: m.UserID, ProjectID: project.ID}] = true
	}
	if len(roster) != workers+1 {
		t.Fatalf("roster has %d entries, want %d", len(roster), workers+1)
	}
	for pair := range roster {
		if !store.mirrors[pair] {
			t.Errorf("roster entry %+v has no project reference", pair)
		}
	}
	for pair := range store.mirrors {
		if !roster[pair] {
			t.Errorf("project reference %+v has no roster entry", pair)
		}
	}
}

func TestGetProjectResolvesMembers(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}

	view, err := svc.GetProject(context.Background(), owner.ID, project.ID)
	if err != nil {
		t.Fatalf("GetProject returned %v", err)
	}
	if len(view.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(view.Members))
	}
	info := view.Members[0]
	if info.ID != owner.ID || info.Name != "alice" || info.Email != "alice@example.com" {
		t.Errorf("member info = %+v", info)
	}
	if info.Access != models.AccessOwner {
		t.Errorf("access = %v, want Owner", info.Access)
	}
}

func TestMemberInfosSerialization(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := store.FindProjectWithUsers(context.Background(), project.ID)
	if err != nil {
		t.Fatal(err)
	}
	view := ProjectView{Project: loaded, Members: MemberInfos(loaded)}

	// The roster rows hide their user records from JSON, so clients only see
	// names and emails through the projected member list.
	out, err := json.Marshal(view)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"name":"alice"`, `"email":"alice@example.com"`, `"role":"owner"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("serialized view missing %s: %s", want, out)
		}
	}
}

func TestWorks(t *testing.T) {
	store, svc := newMembershipEnv(t)
	owner := store.addUser("alice")
	outsider := store.addUser("mallory")

	project, err := svc.CreateProject(context.Background(), owner.ID, ProjectFields{Title: "Apollo"})
	if err != nil {
		t.Fatal(err)
	}

	work, err := svc.AddWork(context.Background(), owner.ID, project.ID, "design", "wireframes")
	if err != nil {
		t.Fatalf("AddWork returned %v", err)
	}
	if work.CreatorID != owner.ID {
		t.Errorf("creator = %d, want %d", work.CreatorID, owner.ID)
	}

	_, err = svc.AddWork(context.Background(), owner.ID, project.ID, "", "")
	if utils.KindOf(err) != utils.KindValidation {
		t.Errorf("empty name kind = %v, want validation", utils.KindOf(err))
	}

	works, err := svc.GetWorks(context.Background(), owner.ID, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(works) != 1 {
		t.Errorf("works = %d, want 1", len(works))
	}

	_, err = svc.GetWorks(context.Background(), outsider.ID, project.ID)
	if utils.KindOf(err) != utils.KindForbidden {
		t.Errorf("outsider kind = %v, want forbidden", utils.KindOf(err))
	}
}
