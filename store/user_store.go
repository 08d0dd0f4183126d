package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"vexa/models"
	"vexa/services"
)

// UserStore is the gorm-backed identity store.
type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

func (s *UserStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddUserProject upserts the user-side mirror row. FirstOrCreate makes the
// call idempotent so reconciliation and retries can re-apply it safely.
func (s *UserStore) AddUserProject(ctx context.Context, userID, projectID uint) error {
	var row models.UserProject
	return s.DB.WithContext(ctx).
		Where(models.UserProject{UserID: userID, ProjectID: projectID}).
		FirstOrCreate(&row).Error
}

// RemoveUserProject hard-deletes the mirror row. Join rows skip gorm's soft
// delete so the unique index stays reusable when a user rejoins.
func (s *UserStore) RemoveUserProject(ctx context.Context, userID, projectID uint) error {
	return s.DB.WithContext(ctx).Unscoped().
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.UserProject{}).Error
}

func (s *UserStore) ListUserProjects(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).Model(&models.UserProject{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *UserStore) AddNotification(ctx context.Context, n *models.Notification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

var _ services.UserStore = (*UserStore)(nil)
