// Package apperrors defines the error taxonomy shared by both services and its
// mapping onto the HTTP surface. Domain code returns *Error values; controllers
// hand anything they get to Respond.
package apperrors

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(message string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Message: message}
}

// Unauthenticated covers missing or unusable credentials.
func Unauthenticated(message string) *Error {
	return &Error{Status: fiber.StatusUnauthorized, Message: message}
}

// Unauthorized covers failed role, ownership or membership checks.
func Unauthorized(message string) *Error {
	return &Error{Status: fiber.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: fiber.StatusNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: fiber.StatusConflict, Message: message}
}

func Internal(message string) *Error {
	return &Error{Status: fiber.StatusInternalServerError, Message: message}
}

// body is the structured error payload: status code, message, timestamp.
type body struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Respond renders err as a JSON error response. Unknown error types become 500
// with a generic message so internal details never leak to clients.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("Internal server error")
	}
	return c.Status(appErr.Status).JSON(body{
		Status:    appErr.Status,
		Message:   appErr.Message,
		Timestamp: time.Now(),
	})
}

// ErrorHandler is the Fiber app-level error handler; it keeps the structured
// error body for errors escaping route handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return Respond(c, &Error{Status: fiberErr.Code, Message: fiberErr.Message})
	}
	return Respond(c, err)
}
