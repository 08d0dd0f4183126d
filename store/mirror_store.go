package store

import (
	"context"

	"gorm.io/gorm"

	"vexa/models"
	"vexa/services"
)

// MirrorStore reads both sides of the membership relation for the background
// reconciliation pass.
type MirrorStore struct {
	DB *gorm.DB
}

func NewMirrorStore(db *gorm.DB) *MirrorStore {
	return &MirrorStore{DB: db}
}

func (s *MirrorStore) ListMemberPairs(ctx context.Context) ([]services.MemberPair, error) {
	var pairs []services.MemberPair
	err := s.DB.WithContext(ctx).Model(&models.ProjectMember{}).
		Select("user_id", "project_id").
		Find(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (s *MirrorStore) ListUserProjectPairs(ctx context.Context) ([]services.MemberPair, error) {
	var pairs []services.MemberPair
	err := s.DB.WithContext(ctx).Model(&models.UserProject{}).
		Select("user_id", "project_id").
		Find(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

var _ services.MirrorStore = (*MirrorStore)(nil)
