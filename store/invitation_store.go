package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"vexa/models"
	"vexa/services"
)

// InvitationStore persists invitations keyed by their single-use code.
type InvitationStore struct {
	DB *gorm.DB
}

func NewInvitationStore(db *gorm.DB) *InvitationStore {
	return &InvitationStore{DB: db}
}

func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	return s.DB.WithContext(ctx).Create(inv).Error
}

func (s *InvitationStore) FindByCode(ctx context.Context, code string) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.DB.WithContext(ctx).Where("code = ?", code).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Claim transitions issued -> redeemed with a single conditional update, so
// of two concurrent redemptions exactly one observes an affected row.
func (s *InvitationStore) Claim(ctx context.Context, code string, at time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Invitation{}).
		Where("code = ? AND status = ?", code, models.InvitationIssued).
		Updates(map[string]interface{}{
			"status":      models.InvitationRedeemed,
			"redeemed_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// Revoke transitions issued -> revoked under the same guard as Claim.
func (s *InvitationStore) Revoke(ctx context.Context, code string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Invitation{}).
		Where("code = ? AND status = ?", code, models.InvitationIssued).
		Update("status", models.InvitationRevoked)
	return res.RowsAffected > 0, res.Error
}

// DeleteExpired lazily evicts invitations past their expiry. Expiry is also
// checked at redemption, so an unswept code never redeems.
func (s *InvitationStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Unscoped().
		Where("expires_at < ?", before).
		Delete(&models.Invitation{})
	return res.RowsAffected, res.Error
}

var _ services.InvitationStore = (*InvitationStore)(nil)
