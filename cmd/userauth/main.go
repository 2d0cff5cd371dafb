package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"teampulse/apperrors"
	"teampulse/config"
	"teampulse/middleware"
	"teampulse/models"
	"teampulse/routes"
	"teampulse/utils"
	"teampulse/worker"
)

func main() {
	logger := log.New(os.Stdout, "USERAUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitSentry(cfg.SentryDSN, cfg.Environment)

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.MigrateAuthDB(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler,
	})

	app.Use(middleware.CORS())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	mailer := utils.NewMailer(cfg.SMTP)

	cleanupWorker := worker.NewTokenCleanupWorker(db, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupWorker.Start(ctx)

	routes.SetupAuthRoutes(app, db, cfg, mailer, logger)

	logger.Printf("🚀 User auth service starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
