package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/config"
	controller "teampulse/controllers"
	"teampulse/middleware"
	"teampulse/utils"
)

// SetupAuthRoutes mounts the identity service's endpoints on app.
func SetupAuthRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, mailer *utils.Mailer, logger *log.Logger) {
	authController := controller.NewAuthController(db, cfg, mailer, logger)
	profileController := controller.NewProfileController(db, logger)

	auth := app.Group("/auth")

	// Public endpoints.
	auth.Post("/register", authController.Register)
	auth.Post("/authenticate", middleware.LoginRateLimiter(cfg), authController.Authenticate)
	auth.Get("/activate-account", authController.ActivateAccount)
	auth.Post("/forgot-password", middleware.LoginRateLimiter(cfg), authController.ForgotPassword)
	auth.Post("/reset-password", authController.ResetPassword)
	auth.Post("/refresh", authController.RefreshToken)

	// Authenticated endpoints.
	protected := auth.Use(middleware.Protected(db, cfg))
	protected.Get("/me", authController.GetCurrentUser)
	protected.Post("/change-password", authController.ChangePassword)
	protected.Get("/users/me/profile", profileController.GetMyProfile)
	protected.Put("/users/me/profile", profileController.UpdateMyProfile)
	protected.Get("/users/:id/exists", authController.UserExists)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "userauth"})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
