package controller

import (
	"log"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"

	"vexa/models"
	"vexa/services"
	"vexa/utils"
)

// InviteController exposes invitation issue, redemption and revocation. The
// redemption link carries display hints in its query string, but the server
// authorizes against the stored invitation only.
type InviteController struct {
	Invitations *services.InvitationService
	Logger      *log.Logger
}

func NewInviteController(invitations *services.InvitationService, logger *log.Logger) *InviteController {
	return &InviteController{Invitations: invitations, Logger: logger}
}

type issueInviteRequest struct {
	ID     uint   `json:"id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Access string `json:"access" validate:"required"`
	Role   string `json:"role"`
}

func (ic *InviteController) InviteMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var req issueInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email must be a valid email",
		})
	}

	result, err := ic.Invitations.Issue(c.Context(), user.ID, projectID, req.ID,
		req.Email, models.ParseAccessLevel(req.Access), req.Role)
	if err != nil {
		return utils.RespondError(c, err)
	}

	resp := fiber.Map{"message": "Invitation sent successfully", "link": result.Link}
	if result.MailError != "" {
		resp["message"] = result.MailError
	}
	return c.JSON(resp)
}

func (ic *InviteController) VerifyInvitation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invitation code is required",
		})
	}

	if err := ic.Invitations.Redeem(c.Context(), code, user.ID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Successfully joined the project"})
}

func (ic *InviteController) RevokeInvitation(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invitation code is required",
		})
	}

	if err := ic.Invitations.Revoke(c.Context(), user.ID, code); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invitation has been revoked"})
}
