package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"teampulse/apperrors"
	"teampulse/client"
	"teampulse/config"
	"teampulse/middleware"
	"teampulse/models"
	"teampulse/routes"
	"teampulse/utils"
)

func main() {
	logger := log.New(os.Stdout, "PROJECTS: ", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitSentry(cfg.SentryDSN, cfg.Environment)

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.MigrateProjectDB(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler,
	})

	app.Use(middleware.CORS())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	users := client.NewUserClient(cfg.UserAuthURL, client.AssumeExists)
	ai := client.NewAIClient(cfg.AI)

	routes.SetupProjectRoutes(app, db, cfg, users, ai, logger)

	logger.Printf("🚀 Project service starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
