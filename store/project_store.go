package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"vexa/models"
	"vexa/services"
)

// ProjectStore is the gorm-backed project store. Member mutations are single
// targeted statements so two actors working on one project cannot overwrite
// each other's roster changes.
type ProjectStore struct {
	DB *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{DB: db}
}

func (s *ProjectStore) FindProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.DB.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) FindProjectWithUsers(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := s.DB.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Members.User").
		First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject persists the project and its initial roster in one
// transaction; gorm creates the associated member rows with the project.
func (s *ProjectStore) CreateProject(ctx context.Context, p *models.Project) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

// DeleteProject removes the project row together with its roster, works and
// invitations. The user-side mirror rows are the caller's fan-out.
func (s *ProjectStore) DeleteProject(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("project_id = ?", id).Delete(&models.Work{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("project_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}

func (s *ProjectStore) UpdateProjectFields(ctx context.Context, id uint, patch map[string]interface{}) error {
	return s.DB.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (s *ProjectStore) AddMember(ctx context.Context, m *models.ProjectMember) error {
	return s.DB.WithContext(ctx).Create(m).Error
}

// UpdateMemberAccess updates the single roster row matching the target user.
func (s *ProjectStore) UpdateMemberAccess(ctx context.Context, projectID, userID uint, access models.AccessLevel, role string) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Updates(map[string]interface{}{"access": access, "role": role})
	return res.RowsAffected, res.Error
}

// RemoveMember hard-deletes the roster row so the (project, user) unique
// index stays reusable if the user is re-invited later.
func (s *ProjectStore) RemoveMember(ctx context.Context, projectID, userID uint) (int64, error) {
	res := s.DB.WithContext(ctx).Unscoped().
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	return res.RowsAffected, res.Error
}

func (s *ProjectStore) AddWork(ctx context.Context, w *models.Work) error {
	return s.DB.WithContext(ctx).Create(w).Error
}

func (s *ProjectStore) ListWorks(ctx context.Context, projectID uint) ([]models.Work, error) {
	var works []models.Work
	err := s.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&works).Error
	if err != nil {
		return nil, err
	}
	return works, nil
}

var _ services.ProjectStore = (*ProjectStore)(nil)
