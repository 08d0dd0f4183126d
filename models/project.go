package models

import "gorm.io/gorm"

// Project represents a shared workspace owned and edited by its members.
type Project struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Img         string `json:"img"`

	// Relations
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Works   []Work          `gorm:"foreignKey:ProjectID" json:"works,omitempty"`
}

// ProjectMember is one entry in a project's roster. At most one row exists per
// (project, user) pair; the creator's Owner row is inserted first. Role is a
// descriptive label; authorization reads Access only.
type ProjectMember struct {
	gorm.Model
	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_member" json:"project_id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_project_member" json:"user_id"`

	Role   string      `gorm:"default:'member'" json:"role"`
	Access AccessLevel `gorm:"type:text;not null" json:"access"`

	// Relations
	User User `json:"-"`
}

// Work represents a work item attached to a project.
type Work struct {
	gorm.Model
	ProjectID   uint   `gorm:"not null;index" json:"project_id"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
}
