package services

import (
	"context"
	"time"

	"vexa/models"
)

// The services consume narrow store interfaces so the core stays testable
// without a database. The gorm-backed implementations live in the store
// package.

// UserStore is the identity-store surface the core depends on.
type UserStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	// AddUserProject records the user-side mirror of a membership. It must be
	// idempotent: re-adding an existing pair is not an error.
	AddUserProject(ctx context.Context, userID, projectID uint) error
	// RemoveUserProject is likewise idempotent.
	RemoveUserProject(ctx context.Context, userID, projectID uint) error
	ListUserProjects(ctx context.Context, userID uint) ([]uint, error)
	AddNotification(ctx context.Context, n *models.Notification) error
}

// ProjectStore is the project-store surface the core depends on. Member
// mutations are targeted single-row operations, never whole-document
// read-modify-write, so concurrent actors on one project cannot lose each
// other's updates.
type ProjectStore interface {
	// FindProject loads a project with its member roster in stored order.
	FindProject(ctx context.Context, id uint) (*models.Project, error)
	// FindProjectWithUsers additionally resolves each member's user record.
	FindProjectWithUsers(ctx context.Context, id uint) (*models.Project, error)
	// CreateProject persists the project together with its initial member row.
	CreateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id uint) error
	UpdateProjectFields(ctx context.Context, id uint, patch map[string]interface{}) error
	AddMember(ctx context.Context, m *models.ProjectMember) error
	// UpdateMemberAccess updates the single roster row matching the target
	// user; it reports how many rows matched.
	UpdateMemberAccess(ctx context.Context, projectID, userID uint, access models.AccessLevel, role string) (int64, error)
	RemoveMember(ctx context.Context, projectID, userID uint) (int64, error)
	AddWork(ctx context.Context, w *models.Work) error
	ListWorks(ctx context.Context, projectID uint) ([]models.Work, error)
}

// InvitationStore keys invitations by their single-use code. Claim and Revoke
// are conditional state transitions so exactly one concurrent caller can win.
type InvitationStore interface {
	Create(ctx context.Context, inv *models.Invitation) error
	FindByCode(ctx context.Context, code string) (*models.Invitation, error)
	// Claim transitions issued -> redeemed. It returns false when the
	// invitation was already consumed by a concurrent or earlier redemption.
	Claim(ctx context.Context, code string, at time.Time) (bool, error)
	// Revoke transitions issued -> revoked, reporting whether it won.
	Revoke(ctx context.Context, code string) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// MirrorStore exposes both sides of the membership relation for the
// reconciliation pass.
type MirrorStore interface {
	ListMemberPairs(ctx context.Context) ([]MemberPair, error)
	ListUserProjectPairs(ctx context.Context) ([]MemberPair, error)
}

// MemberPair identifies one membership edge, from either direction.
type MemberPair struct {
	UserID    uint
	ProjectID uint
}

// InviteMailer delivers invitation links. Delivery is fire-and-forget: a
// failure is reported to the caller but never rolls back the invitation.
type InviteMailer interface {
	SendInvitationEmail(to, name, issuerName, projectTitle, link string) error
}
