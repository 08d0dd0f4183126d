package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vexa/config"
	controller "vexa/controllers"
	"vexa/middleware"
	"vexa/services"
	"vexa/store"
	"vexa/utils"
)

func SetupAuthRoutes(app *fiber.App) {
	// Auth routes group with logging middleware
	auth := app.Group("/api/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/signup", controller.Register)
	auth.Post("/signin", controller.Login)
	auth.Post("/reset-password", controller.ResetPassword)
	auth.Post("/generateotp", controller.SendOTP)
	auth.Post("/verifyotp", controller.VerifyOTP)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	serviceLogger := logrus.StandardLogger()

	// Stores backing the service layer
	users := store.NewUserStore(db)
	projects := store.NewProjectStore(db)
	invites := store.NewInvitationStore(db)

	membership := services.NewMembershipService(users, projects, serviceLogger)
	invitations := services.NewInvitationService(invites, users, membership,
		utils.NewMailer(), config.AppConfig.AppURL, serviceLogger)

	projectController := controller.NewProjectController(membership,
		log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	inviteController := controller.NewInviteController(invitations,
		log.New(os.Stdout, "INVITE: ", log.LstdFlags))
	chatController := controller.NewChatController(db,
		log.New(os.Stdout, "CHAT: ", log.LstdFlags))

	// User routes
	user := app.Group("/api/users", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	user.Get("/projects", controller.GetUserProjects)
	user.Get("/notifications", controller.GetNotifications)
	user.Get("/find/:email", controller.FindUserByEmail)
	user.Get("/", controller.GetUser)
	user.Put("/:id", controller.UpdateUser)
	user.Delete("/:id", controller.DeleteUser)

	// Project routes
	project := app.Group("/api/project", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	project.Post("/", projectController.CreateProject)

	// Invitation routes; issuance is rate limited per user
	project.Post("/invite/:id", middleware.InviteRateLimiter(), inviteController.InviteMember)
	project.Get("/invite/verify/:code", inviteController.VerifyInvitation)
	project.Delete("/invite/:code", inviteController.RevokeInvitation)

	project.Get("/:id", projectController.GetProject)
	project.Patch("/:id", projectController.UpdateProject)
	project.Delete("/:id", projectController.DeleteProject)
	project.Get("/:id/members", projectController.GetMembers)
	project.Patch("/:id/member", projectController.UpdateMember)
	project.Delete("/:id/member", projectController.RemoveMember)
	project.Post("/:id/works", projectController.AddWork)
	project.Get("/:id/works", projectController.GetWorks)

	// Chat routes
	chat := app.Group("/api/chat", middleware.Protected())
	chat.Get("/messages", chatController.GetMessages)
	chat.Post("/messages", chatController.SendMessage)
	chat.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	chat.Get("/ws", websocket.New(chatController.HandleChatWS))
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize Google OAuth
	controller.InitGoogleOAuth()

	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
