package middleware

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"teampulse/apperrors"
	"teampulse/client"
	"teampulse/utils"
)

// ProfileFetcher is the slice of the identity client the middleware needs.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, token string) (*client.Identity, error)
}

// Identify is the project service's authentication middleware. Two named steps
// with documented precedence:
//
//  1. Local token validation. Tolerated to fail: the services may be deployed
//     with different signing secrets, so a local failure is logged and
//     ignored rather than treated as fatal.
//  2. Remote profile lookup against the identity service. Authoritative: its
//     success is proof of authentication, its failure ends the request.
//
// The raw bearer token and the resolved identity are stored in c.Locals.
func Identify(users ProfileFetcher, jwtSecret string, logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperrors.Respond(c, apperrors.Unauthenticated("Authorization required"))
		}

		// Step 1: local fast-path check, advisory only.
		if !utils.ValidateToken(authHeader, jwtSecret) {
			logger.Printf("local JWT validation failed, deferring to auth service")
		}

		// Step 2: remote lookup, authoritative.
		identity, err := users.GetProfile(c.Context(), authHeader)
		if err != nil {
			return apperrors.Respond(c, err)
		}

		c.Locals("identity", identity)
		c.Locals("token", authHeader)

		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by Identify.
func IdentityFromCtx(c *fiber.Ctx) *client.Identity {
	return c.Locals("identity").(*client.Identity)
}

// TokenFromCtx returns the raw Authorization header stored by Identify.
func TokenFromCtx(c *fiber.Ctx) string {
	token, _ := c.Locals("token").(string)
	return token
}
