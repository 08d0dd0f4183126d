package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultAvatarURL is used when a user has not uploaded a profile image.
const DefaultAvatarURL = "https://i.ibb.co/4pDNDk1/default-avatar.png"

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `json:"-"`
	GoogleSignIn bool      `gorm:"default:false" json:"google_sign_in"`
	IsVerified   bool      `gorm:"default:false" json:"is_verified"`
	OTP          string    `json:"-"`
	OTPExpiresAt time.Time `json:"-"`

	// Profile information
	Name string `gorm:"not null" json:"name"`
	Img  string `json:"img"`

	// Relations
	Projects      []UserProject  `gorm:"foreignKey:UserID" json:"projects,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// UserProject is the denormalized back-reference from a user to the projects
// they belong to. It mirrors ProjectMember: for every member row there must be
// exactly one UserProject row and vice versa. The two sides are written
// separately (member row first), so the reconcile worker repairs any asymmetry
// left by a failure between the writes.
type UserProject struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_project" json:"user_id"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_user_project" json:"project_id"`
}

// Notification is an in-app notification persisted for a user.
type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Type    string `json:"type"` // invitation, member_joined, member_removed
	Message string `gorm:"not null" json:"message"`
	Read    bool   `gorm:"default:false" json:"read"`
}

// MemberInfo is the display projection of a member used in API responses:
// identity resolved to presentational fields plus the membership attributes.
type MemberInfo struct {
	ID     uint        `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Img    string      `json:"img"`
	Role   string      `json:"role"`
	Access AccessLevel `json:"access"`
}
