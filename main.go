package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"vexa/config"
	"vexa/middleware"
	"vexa/routes"
	"vexa/store"
	"vexa/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "VEXA: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry error reporting when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: config.AppConfig.SentryDSN}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Initialize and start the relation reconcile worker
	reconcileWorker := worker.NewReconcileWorker(
		store.NewMirrorStore(config.DB),
		store.NewUserStore(config.DB),
		store.NewInvitationStore(config.DB),
		logrus.StandardLogger(),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconcileWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
