package apperrors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRespondRendersStructuredBody(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return Respond(c, NotFound("Project not found"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Status    int    `json:"status"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if parsed.Status != 404 || parsed.Message != "Project not found" {
		t.Fatalf("body = %+v", parsed)
	}
	if parsed.Timestamp == "" {
		t.Fatalf("timestamp missing from body")
	}
}

// Unknown error types must not leak internals to clients.
func TestRespondMasksUnknownErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return Respond(c, errors.New("pq: connection refused on 10.0.0.3"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if parsed.Message != "Internal server error" {
		t.Fatalf("message = %q, internal details must not leak", parsed.Message)
	}
}

func TestErrorHandlerWrapsFiberErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.ErrMethodNotAllowed
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestConstructorsMapStatuses(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{BadRequest("x"), fiber.StatusBadRequest},
		{Unauthenticated("x"), fiber.StatusUnauthorized},
		{Unauthorized("x"), fiber.StatusForbidden},
		{NotFound("x"), fiber.StatusNotFound},
		{Conflict("x"), fiber.StatusConflict},
		{Internal("x"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.want {
			t.Fatalf("%q: status = %d, want %d", tc.err.Message, tc.err.Status, tc.want)
		}
	}
}
