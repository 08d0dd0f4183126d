package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies failures crossing the service boundary. Controllers
// translate kinds to HTTP statuses; services never pick statuses themselves.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindForbidden
	KindConflict
	KindValidation
	KindDependency
)

// AppError is a typed failure returned by the service layer.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func ForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func ConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func ValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// DependencyError wraps a store or dispatcher failure. The cause is kept for
// logging but never serialized to clients.
func DependencyError(message string, err error) *AppError {
	return &AppError{Kind: KindDependency, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unknown errors are treated as
// dependency failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// RespondError translates a service error into an HTTP response. NotFound and
// Forbidden collapse into one opaque 403 so a caller cannot probe whether a
// project exists versus whether they lack access to it.
func RespondError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		LogError("internal_error", err, map[string]interface{}{"path": c.Path()})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}

	switch appErr.Kind {
	case KindNotFound, KindForbidden:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You are not allowed to perform this action",
		})
	case KindConflict:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": appErr.Message,
		})
	case KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": appErr.Message,
		})
	default:
		LogError("dependency_failure", appErr, map[string]interface{}{"path": c.Path()})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong",
		})
	}
}
