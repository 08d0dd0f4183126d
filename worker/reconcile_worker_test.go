package worker

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"vexa/models"
	"vexa/services"
)

type fakeMirrorStore struct {
	members []services.MemberPair
	mirrors []services.MemberPair
}

func (f *fakeMirrorStore) ListMemberPairs(ctx context.Context) ([]services.MemberPair, error) {
	return f.members, nil
}

func (f *fakeMirrorStore) ListUserProjectPairs(ctx context.Context) ([]services.MemberPair, error) {
	return f.mirrors, nil
}

type fakeUserStore struct {
	added   []services.MemberPair
	removed []services.MemberPair
}

func (f *fakeUserStore) FindUser(ctx context.Context, id uint) (*models.User, error) { return nil, nil }

func (f *fakeUserStore) AddUserProject(ctx context.Context, userID, projectID uint) error {
	f.added = append(f.added, services.MemberPair{UserID: userID, ProjectID: projectID})
	return nil
}

func (f *fakeUserStore) RemoveUserProject(ctx context.Context, userID, projectID uint) error {
	f.removed = append(f.removed, services.MemberPair{UserID: userID, ProjectID: projectID})
	return nil
}

func (f *fakeUserStore) ListUserProjects(ctx context.Context, userID uint) ([]uint, error) {
	return nil, nil
}

func (f *fakeUserStore) AddNotification(ctx context.Context, n *models.Notification) error {
	return nil
}

type fakeInvitationStore struct {
	sweeps []time.Time
}

func (f *fakeInvitationStore) Create(ctx context.Context, inv *models.Invitation) error { return nil }

func (f *fakeInvitationStore) FindByCode(ctx context.Context, code string) (*models.Invitation, error) {
	return nil, nil
}

func (f *fakeInvitationStore) Claim(ctx context.Context, code string, at time.Time) (bool, error) {
	return false, nil
}

func (f *fakeInvitationStore) Revoke(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (f *fakeInvitationStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	f.sweeps = append(f.sweeps, before)
	return 2, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunOnceHealsBothDirections(t *testing.T) {
	mirror := &fakeMirrorStore{
		members: []services.MemberPair{
			{UserID: 1, ProjectID: 10}, // consistent
			{UserID: 2, ProjectID: 10}, // missing mirror
		},
		mirrors: []services.MemberPair{
			{UserID: 1, ProjectID: 10}, // consistent
			{UserID: 3, ProjectID: 99}, // orphaned mirror
		},
	}
	users := &fakeUserStore{}
	invites := &fakeInvitationStore{}

	w := NewReconcileWorker(mirror, users, invites, quietLogger())
	w.RunOnce(context.Background())

	if len(users.added) != 1 || users.added[0] != (services.MemberPair{UserID: 2, ProjectID: 10}) {
		t.Errorf("added = %v, want the missing mirror for user 2", users.added)
	}
	if len(users.removed) != 1 || users.removed[0] != (services.MemberPair{UserID: 3, ProjectID: 99}) {
		t.Errorf("removed = %v, want the orphaned mirror for user 3", users.removed)
	}
	if len(invites.sweeps) != 1 {
		t.Errorf("sweeps = %d, want 1", len(invites.sweeps))
	}
}

func TestStartStopsDuringInitialDelay(t *testing.T) {
	w := NewReconcileWorker(&fakeMirrorStore{}, &fakeUserStore{}, &fakeInvitationStore{}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation during the initial delay")
	}
}

func TestRunOnceConsistentStateIsNoop(t *testing.T) {
	mirror := &fakeMirrorStore{
		members: []services.MemberPair{{UserID: 1, ProjectID: 10}},
		mirrors: []services.MemberPair{{UserID: 1, ProjectID: 10}},
	}
	users := &fakeUserStore{}

	w := NewReconcileWorker(mirror, users, &fakeInvitationStore{}, quietLogger())
	w.RunOnce(context.Background())
	// Reconciliation is idempotent: run it again on the same state.
	w.RunOnce(context.Background())

	if len(users.added) != 0 || len(users.removed) != 0 {
		t.Errorf("repairs on consistent state: added=%v removed=%v", users.added, users.removed)
	}
}
