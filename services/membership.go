package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"vexa/models"
	"vexa/utils"
)

// MembershipService owns the project/member and user/project relations. Every
// mutation keeps the two sides mirror-consistent: the roster row is the
// authorization-bearing write and always goes first, so a failure between the
// writes leaves a dangling membership the reconcile worker can repair rather
// than a user who believes they joined a project that disagrees.
type MembershipService struct {
	users    UserStore
	projects ProjectStore
	logger   *logrus.Logger
}

func NewMembershipService(users UserStore, projects ProjectStore, logger *logrus.Logger) *MembershipService {
	return &MembershipService{
		users:    users,
		projects: projects,
		logger:   logger,
	}
}

// ProjectFields carries the descriptive fields of a project.
type ProjectFields struct {
	Title       string
	Description string
	Tags        string
	Img         string
}

// ProjectPatch is a partial update; nil fields are left untouched.
type ProjectPatch struct {
	Title       *string
	Description *string
	Tags        *string
	Img         *string
}

// ProjectView is a project with its roster resolved to display fields.
type ProjectView struct {
	Project *models.Project     `json:"project"`
	Members []models.MemberInfo `json:"members"`
}

// CreateProject constructs a project whose roster contains exactly one Owner
// entry for the creator, then records the creator's mirror row.
func (s *MembershipService) CreateProject(ctx context.Context, ownerUserID uint, fields ProjectFields) (*models.Project, error) {
	if fields.Title == "" {
		return nil, utils.ValidationError("title is required")
	}

	owner, err := s.users.FindUser(ctx, ownerUserID)
	if err != nil {
		return nil, utils.DependencyError("failed to load user", err)
	}
	if owner == nil {
		return nil, utils.NotFoundError("User not found")
	}

	project := &models.Project{
		Title:       fields.Title,
		Description: fields.Description,
		Tags:        fields.Tags,
		Img:         fields.Img,
		Members: []models.ProjectMember{
			{
				UserID: ownerUserID,
				Role:   "owner",
				Access: models.AccessOwner,
			},
		},
	}

	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, utils.DependencyError("failed to create project", err)
	}

	if err := s.users.AddUserProject(ctx, ownerUserID, project.ID); err != nil {
		// The roster row exists; reconciliation will heal the missing mirror.
		s.logger.WithFields(logrus.Fields{
			"project_id": project.ID,
			"user_id":    ownerUserID,
		}).WithError(err).Error("failed to record owner's project reference")
		return nil, utils.DependencyError("failed to record project membership", err)
	}

	return project, nil
}

// DeleteProject removes the project and fans out mirror removals to every
// former member. The fan-out is best-effort: individual failures are logged
// and left to reconciliation, never fatal to the primary deletion.
func (s *MembershipService) DeleteProject(ctx context.Context, actorUserID, projectID uint) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := Authorize(project, actorUserID, RequireOwner); err != nil {
		return err
	}

	members := project.Members

	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		return utils.DependencyError("failed to delete project", err)
	}

	for _, m := range members {
		if err := s.users.RemoveUserProject(ctx, m.UserID, projectID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"project_id": projectID,
				"user_id":    m.UserID,
			}).WithError(err).Error("failed to remove project reference during delete fan-out")
		}
	}

	return nil
}

// UpdateProjectFields patches only the supplied fields; the roster is never
// touched through this path.
func (s *MembershipService) UpdateProjectFields(ctx context.Context, actorUserID, projectID uint, patch ProjectPatch) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := Authorize(project, actorUserID, RequireManage); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		if *patch.Title == "" {
			return utils.ValidationError("title cannot be empty")
		}
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Tags != nil {
		fields["tags"] = *patch.Tags
	}
	if patch.Img != nil {
		fields["img"] = *patch.Img
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.projects.UpdateProjectFields(ctx, projectID, fields); err != nil {
		return utils.DependencyError("failed to update project", err)
	}
	return nil
}

// UpdateMemberAccess changes the access level and role of a single roster
// entry. Demoting the last remaining Owner is refused: an ownerless project
// could never be deleted or re-promoted.
func (s *MembershipService) UpdateMemberAccess(ctx context.Context, actorUserID, projectID, targetUserID uint, access models.AccessLevel, role string) error {
	if !access.IsMember() {
		return utils.ValidationError("access must be one of Owner, Admin, Editor")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := Authorize(project, actorUserID, RequireManage); err != nil {
		return err
	}

	current := MemberAccess(project, targetUserID)
	if current == models.AccessNone {
		return utils.NotFoundError("Member not found")
	}
	if current == models.AccessOwner && access != models.AccessOwner && s.ownerCount(project) == 1 {
		return utils.ConflictError("Cannot demote the only owner of a project")
	}

	rows, err := s.projects.UpdateMemberAccess(ctx, projectID, targetUserID, access, role)
	if err != nil {
		return utils.DependencyError("failed to update member", err)
	}
	if rows == 0 {
		return utils.NotFoundError("Member not found")
	}
	return nil
}

// RemoveMember removes a roster entry along with its mirror row. Actors may
// remove themselves. Removing the last remaining Owner is refused.
func (s *MembershipService) RemoveMember(ctx context.Context, actorUserID, projectID, targetUserID uint) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := Authorize(project, actorUserID, RequireManage); err != nil {
		return err
	}

	current := MemberAccess(project, targetUserID)
	if current == models.AccessNone {
		return utils.NotFoundError("Member not found")
	}
	if current == models.AccessOwner && s.ownerCount(project) == 1 {
		return utils.ConflictError("Cannot remove the only owner of a project")
	}

	rows, err := s.projects.RemoveMember(ctx, projectID, targetUserID)
	if err != nil {
		return utils.DependencyError("failed to remove member", err)
	}
	if rows == 0 {
		return utils.NotFoundError("Member not found")
	}

	if err := s.users.RemoveUserProject(ctx, targetUserID, projectID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"user_id":    targetUserID,
		}).WithError(err).Error("failed to remove project reference")
		return utils.DependencyError("failed to remove project reference", err)
	}

	return nil
}

// ListMembers returns the roster in stored order to any member.
func (s *MembershipService) ListMembers(ctx context.Context, actorUserID, projectID uint) ([]models.ProjectMember, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(project, actorUserID, RequireMember); err != nil {
		return nil, err
	}
	return project.Members, nil
}

// GetProject returns the project with members resolved to display fields.
func (s *MembershipService) GetProject(ctx context.Context, actorUserID, projectID uint) (*ProjectView, error) {
	project, err := s.projects.FindProjectWithUsers(ctx, projectID)
	if err != nil {
		return nil, utils.DependencyError("failed to load project", err)
	}
	if project == nil {
		return nil, utils.NotFoundError("Project not found")
	}
	if err := Authorize(project, actorUserID, RequireMember); err != nil {
		return nil, err
	}

	return &ProjectView{Project: project, Members: MemberInfos(project)}, nil
}

// MemberInfos projects a loaded roster onto its display fields. The member
// user records must be preloaded.
func MemberInfos(p *models.Project) []models.MemberInfo {
	infos := make([]models.MemberInfo, 0, len(p.Members))
	for _, m := range p.Members {
		infos = append(infos, models.MemberInfo{
			ID:     m.UserID,
			Name:   m.User.Name,
			Email:  m.User.Email,
			Img:    m.User.Img,
			Role:   m.Role,
			Access: m.Access,
		})
	}
	return infos
}

// AddWork attaches a work item to the project.
func (s *MembershipService) AddWork(ctx context.Context, actorUserID, projectID uint, name, description string) (*models.Work, error) {
	if name == "" {
		return nil, utils.ValidationError("name is required")
	}

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(project, actorUserID, RequireManage); err != nil {
		return nil, err
	}

	work := &models.Work{
		ProjectID:   projectID,
		CreatorID:   actorUserID,
		Name:        name,
		Description: description,
	}
	if err := s.projects.AddWork(ctx, work); err != nil {
		return nil, utils.DependencyError("failed to create work", err)
	}
	return work, nil
}

// GetWorks lists a project's work items to any member.
func (s *MembershipService) GetWorks(ctx context.Context, actorUserID, projectID uint) ([]models.Work, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(project, actorUserID, RequireMember); err != nil {
		return nil, err
	}

	works, err := s.projects.ListWorks(ctx, projectID)
	if err != nil {
		return nil, utils.DependencyError("failed to list works", err)
	}
	return works, nil
}

// join adds a membership created by a redeemed invitation: roster row first,
// mirror row second.
func (s *MembershipService) join(ctx context.Context, userID, projectID uint, access models.AccessLevel, role string) error {
	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Access:    access,
	}
	if err := s.projects.AddMember(ctx, member); err != nil {
		return utils.DependencyError("failed to add member", err)
	}

	if err := s.users.AddUserProject(ctx, userID, projectID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"user_id":    userID,
		}).WithError(err).Error("failed to record project reference after join")
		return utils.DependencyError("failed to record project membership", err)
	}
	return nil
}

// loadProject maps a missing project to NotFound before any authorization is
// evaluated: access cannot be checked against a roster that does not exist.
func (s *MembershipService) loadProject(ctx context.Context, projectID uint) (*models.Project, error) {
	project, err := s.projects.FindProject(ctx, projectID)
	if err != nil {
		return nil, utils.DependencyError("failed to load project", err)
	}
	if project == nil {
		return nil, utils.NotFoundError("Project not found")
	}
	return project, nil
}

func (s *MembershipService) ownerCount(p *models.Project) int {
	count := 0
	for _, m := range p.Members {
		if m.Access == models.AccessOwner {
			count++
		}
	}
	return count
}
