package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/apperrors"
	"teampulse/config"
	"teampulse/models"
	"teampulse/utils"
)

// Protected authenticates requests against the local user store. It is the
// identity service's guard: the token must parse with our secret and the
// account must be enabled and not locked.
func Protected(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.Respond(c, apperrors.Unauthenticated("Authorization required"))
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return apperrors.Respond(c, apperrors.Unauthenticated("Invalid authorization format"))
		}

		claims, err := utils.ParseJWTToken(tokenParts[1], cfg.JWTSecret)
		if err != nil {
			return apperrors.Respond(c, apperrors.Unauthenticated("Invalid or expired token"))
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			return apperrors.Respond(c, apperrors.Unauthenticated("User not found"))
		}

		if !user.Enabled {
			return apperrors.Respond(c, apperrors.Unauthorized("Account is not activated"))
		}
		if user.AccountLocked {
			return apperrors.Respond(c, apperrors.Unauthorized("Account is locked"))
		}

		c.Locals("user", &user)
		c.Locals("userID", user.ID)

		return c.Next()
	}
}
