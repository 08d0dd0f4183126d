package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"vexa/models"
	"vexa/services"
	"vexa/utils"
)

// ProjectController exposes the membership core over HTTP. It resolves the
// actor from the request and hands everything to the service layer as
// explicit parameters.
type ProjectController struct {
	Membership *services.MembershipService
	Logger     *log.Logger
}

func NewProjectController(membership *services.MembershipService, logger *log.Logger) *ProjectController {
	return &ProjectController{Membership: membership, Logger: logger}
}

type createProjectRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Img         string `json:"img"`
}

type updateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Tags        *string `json:"tags"`
	Img         *string `json:"img"`
}

type updateMemberRequest struct {
	ID     uint   `json:"id" validate:"required"`
	Access string `json:"access" validate:"required"`
	Role   string `json:"role"`
}

type removeMemberRequest struct {
	ID uint `json:"id" validate:"required"`
}

type addWorkRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req createProjectRequest
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

	project, err := pc.Membership.CreateProject(c.Context(), user.ID, services.ProjectFields{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Img:         req.Img,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	view, err := pc.Membership.GetProject(c.Context(), user.ID, projectID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(view)
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var req updateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := pc.Membership.UpdateProjectFields(c.Context(), user.ID, projectID, services.ProjectPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Img:         req.Img,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Project has been updated"})
}

func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	if err := pc.Membership.DeleteProject(c.Context(), user.ID, projectID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project has been deleted"})
}

func (pc *ProjectController) GetMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	members, err := pc.Membership.ListMembers(c.Context(), user.ID, projectID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(members)
}

func (pc *ProjectController) UpdateMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var req updateMemberRequest
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

	err := pc.Membership.UpdateMemberAccess(c.Context(), user.ID, projectID, req.ID,
		models.ParseAccessLevel(req.Access), req.Role)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Member has been updated"})
}

func (pc *ProjectController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var req removeMemberRequest
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

	if err := pc.Membership.RemoveMember(c.Context(), user.ID, projectID, req.ID); err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Member has been removed"})
}

func (pc *ProjectController) AddWork(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	var req addWorkRequest
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

	work, err := pc.Membership.AddWork(c.Context(), user.ID, projectID, req.Name, req.Description)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(work)
}

func (pc *ProjectController) GetWorks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	projectID := utils.ParseUint(c.Params("id"))

	works, err := pc.Membership.GetWorks(c.Context(), user.ID, projectID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return c.JSON(works)
}
