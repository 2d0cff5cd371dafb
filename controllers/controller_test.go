package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/apperrors"
	"teampulse/client"
	"teampulse/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := models.MigrateProjectDB(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// appAs builds a fiber app whose requests carry the given caller identity, the
// way the Identify middleware would after a successful remote lookup.
func appAs(userID uint, register func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperrors.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("identity", &client.Identity{UserID: userID, Email: "caller@example.com"})
		c.Locals("token", "Bearer test-token")
		return c.Next()
	})
	register(app)
	return app
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func uintPtr(v uint) *uint {
	return &v
}
