package controller

import (
	"github.com/gofiber/fiber/v2"

	"vexa/config"
	"vexa/models"
	"vexa/services"
	"vexa/utils"
)

type updateUserRequest struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
	Img  *string `json:"img"`
}

// GetUser returns the authenticated user's profile with notifications and
// project references preloaded.
func GetUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var full models.User
	err := config.DB.
		Preload("Projects").
		Preload("Notifications").
		First(&full, user.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user",
		})
	}
	return c.JSON(full)
}

// UpdateUser updates the caller's own profile; anyone else's is off limits.
func UpdateUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	targetID := utils.ParseUint(c.Params("id"))

	if targetID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can update only your account",
		})
	}

	var req updateUserRequest
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

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Img != nil {
		fields["img"] = *req.Img
	}
	if len(fields) > 0 {
		if err := config.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(fields).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update user",
			})
		}
	}

	var updated models.User
	if err := config.DB.First(&updated, user.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user",
		})
	}
	return c.JSON(updated)
}

// DeleteUser deletes the caller's own account.
func DeleteUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	targetID := utils.ParseUint(c.Params("id"))

	if targetID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can delete only your account",
		})
	}

	if err := config.DB.Delete(&models.User{}, user.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}
	return c.JSON(fiber.Map{"message": "User has been deleted"})
}

// GetUserProjects lists the projects the caller belongs to, with members
// resolved to display fields.
func GetUserProjects(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var ids []uint
	err := config.DB.Model(&models.UserProject{}).
		Where("user_id = ?", user.ID).
		Order("id ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load projects", err)
	}

	projects := []models.Project{}
	if len(ids) > 0 {
		err = config.DB.
			Preload("Members").
			Preload("Members.User").
			Where("id IN ?", ids).
			Find(&projects).Error
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load projects", err)
		}
	}

	// Member user records never serialize through the roster rows; project
	// each roster onto its display fields.
	views := make([]services.ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, services.ProjectView{
			Project: &projects[i],
			Members: services.MemberInfos(&projects[i]),
		})
	}
	return c.JSON(utils.SuccessResponse(views))
}

// GetNotifications lists the caller's notifications, newest first.
func GetNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var notifications []models.Notification
	err := config.DB.
		Where("user_id = ?", user.ID).
		Order("id DESC").
		Find(&notifications).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load notifications", err)
	}
	return c.JSON(notifications)
}

// FindUserByEmail looks up a user for inviting, matching case-insensitively.
func FindUserByEmail(c *fiber.Ctx) error {
	email := c.Params("email")

	var user models.User
	if err := config.DB.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No user found with this email",
		})
	}
	return c.JSON(user)
}
