package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"vexa/models"
	"vexa/utils"
)

// InvitationService issues and redeems single-use invitation codes. Each
// invitation is stored under its own code so concurrent invitations never
// overwrite one another; the stored record, never the link, is the source of
// truth at redemption.
type InvitationService struct {
	invites    InvitationStore
	users      UserStore
	membership *MembershipService
	mailer     InviteMailer
	appURL     string
	logger     *logrus.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

func NewInvitationService(invites InvitationStore, users UserStore, membership *MembershipService, mailer InviteMailer, appURL string, logger *logrus.Logger) *InvitationService {
	return &InvitationService{
		invites:    invites,
		users:      users,
		membership: membership,
		mailer:     mailer,
		appURL:     appURL,
		logger:     logger,
		now:        time.Now,
	}
}

// IssueResult reports an issued invitation back to the caller. MailError is
// set when delivery failed; the invitation remains valid regardless.
type IssueResult struct {
	Invitation *models.Invitation `json:"invitation"`
	Link       string             `json:"link"`
	MailError  string             `json:"mail_error,omitempty"`
}

// Issue creates an invitation for the invitee with the granted access level,
// persists it keyed by a fresh single-use code, and dispatches the link by
// email. Delivery is fire-and-forget: a send failure is reported in the
// result but does not invalidate the stored invitation.
func (s *InvitationService) Issue(ctx context.Context, actorUserID, projectID, inviteeUserID uint, email string, access models.AccessLevel, role string) (*IssueResult, error) {
	if !access.IsMember() {
		return nil, utils.ValidationError("access must be one of Owner, Admin, Editor")
	}

	project, err := s.membership.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(project, actorUserID, RequireManage); err != nil {
		return nil, err
	}

	invitee, err := s.users.FindUser(ctx, inviteeUserID)
	if err != nil {
		return nil, utils.DependencyError("failed to load user", err)
	}
	if invitee == nil {
		return nil, utils.NotFoundError("User not found")
	}
	if MemberAccess(project, inviteeUserID).IsMember() {
		return nil, utils.ConflictError("User is already a member of this project")
	}

	code, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, utils.DependencyError("failed to generate invitation code", err)
	}

	invitation := &models.Invitation{
		Code:      code,
		ProjectID: projectID,
		InviteeID: inviteeUserID,
		IssuerID:  actorUserID,
		Role:      role,
		Access:    access,
		Status:    models.InvitationIssued,
		ExpiresAt: s.now().Add(utils.InviteExpiry),
	}
	if err := s.invites.Create(ctx, invitation); err != nil {
		return nil, utils.DependencyError("failed to store invitation", err)
	}

	link := s.buildLink(invitation)
	result := &IssueResult{Invitation: invitation, Link: link}

	issuerName := ""
	if issuer, err := s.users.FindUser(ctx, actorUserID); err == nil && issuer != nil {
		issuerName = issuer.Name
	}

	if err := s.mailer.SendInvitationEmail(email, invitee.Name, issuerName, project.Title, link); err != nil {
		s.logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"invitee_id": inviteeUserID,
		}).WithError(err).Error("failed to send invitation email")
		result.MailError = "Invitation stored but the email could not be delivered"
	}

	s.notify(ctx, inviteeUserID, "invitation",
		fmt.Sprintf("You have been invited to join the project %s", project.Title))

	return result, nil
}

// Redeem consumes an invitation code for the authenticated redeemer and
// creates the membership exactly once. The claim is a conditional state
// transition, so of two concurrent redemptions one wins and the other
// observes Conflict.
func (s *InvitationService) Redeem(ctx context.Context, code string, redeemerUserID uint) error {
	invitation, err := s.invites.FindByCode(ctx, code)
	if err != nil {
		return utils.DependencyError("failed to load invitation", err)
	}
	if invitation == nil {
		return utils.NotFoundError("Invalid or expired invitation link")
	}
	if invitation.IsExpired(s.now()) {
		return utils.NotFoundError("Invalid or expired invitation link")
	}

	// The stored invitation is the sole source of truth: project, invitee,
	// access and role all come from the record, never from link parameters.
	if invitation.InviteeID != redeemerUserID {
		return utils.ForbiddenError("This invitation was issued to a different user")
	}

	project, err := s.membership.loadProject(ctx, invitation.ProjectID)
	if err != nil {
		return err
	}
	if MemberAccess(project, redeemerUserID).IsMember() {
		return utils.ConflictError("You are already a member of this project")
	}

	if invitation.IsConsumed() {
		return utils.ConflictError("This invitation has already been used")
	}

	// Claim first; the membership is only created after winning the
	// transition.
	won, err := s.invites.Claim(ctx, code, s.now())
	if err != nil {
		return utils.DependencyError("failed to redeem invitation", err)
	}
	if !won {
		return utils.ConflictError("This invitation has already been used")
	}

	if err := s.membership.join(ctx, redeemerUserID, invitation.ProjectID, invitation.Access, invitation.Role); err != nil {
		return err
	}

	s.notify(ctx, invitation.IssuerID, "member_joined",
		fmt.Sprintf("Your invitation to the project %s was accepted", project.Title))

	return nil
}

// Revoke cancels a pending invitation before redemption. Only members allowed
// to invite on the invitation's project may revoke it.
func (s *InvitationService) Revoke(ctx context.Context, actorUserID uint, code string) error {
	invitation, err := s.invites.FindByCode(ctx, code)
	if err != nil {
		return utils.DependencyError("failed to load invitation", err)
	}
	if invitation == nil {
		return utils.NotFoundError("Invitation not found")
	}

	project, err := s.membership.loadProject(ctx, invitation.ProjectID)
	if err != nil {
		return err
	}
	if err := Authorize(project, actorUserID, RequireManage); err != nil {
		return err
	}

	won, err := s.invites.Revoke(ctx, code)
	if err != nil {
		return utils.DependencyError("failed to revoke invitation", err)
	}
	if !won {
		return utils.ConflictError("This invitation has already been used")
	}
	return nil
}

// buildLink embeds the code plus the intended grant so the redemption page is
// self-describing. It is not self-authorizing: the server re-reads everything
// from the stored invitation.
func (s *InvitationService) buildLink(inv *models.Invitation) string {
	q := url.Values{}
	q.Set("projectid", fmt.Sprintf("%d", inv.ProjectID))
	q.Set("userid", fmt.Sprintf("%d", inv.InviteeID))
	q.Set("access", string(inv.Access))
	q.Set("role", inv.Role)
	return fmt.Sprintf("%s/projects/invite/%s?%s", s.appURL, url.PathEscape(inv.Code), q.Encode())
}

func (s *InvitationService) notify(ctx context.Context, userID uint, kind, message string) {
	n := &models.Notification{UserID: userID, Type: kind, Message: message}
	if err := s.users.AddNotification(ctx, n); err != nil {
		s.logger.WithField("user_id", userID).WithError(err).Warn("failed to store notification")
	}
}
