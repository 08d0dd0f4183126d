package models

import (
	"time"

	"gorm.io/gorm"
)

// Invitation statuses. Issued is the only non-terminal state; there is no
// transition back to it.
const (
	InvitationIssued   = "issued"
	InvitationRedeemed = "redeemed"
	InvitationRevoked  = "revoked"
)

// Invitation is a pending membership grant, keyed by its single-use code.
// Each invitation is its own row so concurrently issued invitations never
// clobber each other, and the service survives restarts and multiple
// instances. The stored access/role are the source of truth at redemption;
// values carried in the link are display hints only.
type Invitation struct {
	gorm.Model
	Code      string `gorm:"uniqueIndex;not null" json:"-"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	InviteeID uint   `gorm:"not null;index" json:"invitee_id"`
	IssuerID  uint   `gorm:"not null" json:"issuer_id"`

	Role   string      `json:"role"`
	Access AccessLevel `gorm:"type:text;not null" json:"access"`

	Status     string     `gorm:"default:'issued';index" json:"status"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// IsExpired reports whether the invitation's expiry has passed at the given
// instant. Expiry is checked passively at redemption; sweeping expired rows is
// a background concern.
func (i Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsConsumed reports whether the invitation has reached a terminal state.
func (i Invitation) IsConsumed() bool {
	return i.Status != InvitationIssued
}
