package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
// Field-level validation failures carry the full field list in Errors;
// every other failure carries a single Message.
type errorResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the domain error taxonomy to deterministic HTTP status codes.
//   - Renders validation failures as a structured per-field error list.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Status: "error", Message: fmt.Sprintf("%v", he.Message)}
	}

	if ve, ok := domain.AsValidationError(err); ok {
		return http.StatusBadRequest, errorResponse{Status: "error", Errors: ve.Fields}
	}

	// Known domain errors → deterministic HTTP codes. The messages are
	// deliberately generic: invalid_credentials must not reveal whether
	// the username or the password was wrong.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Status: "error", Message: "invalid username or password"}
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden, errorResponse{Status: "error", Message: "account is disabled"}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Status: "error", Message: "invalid or expired token"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Status: "error", Message: "access forbidden"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Status: "error", Message: "user not found"}
	case errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusNotFound, errorResponse{Status: "error", Message: "role not found"}
	case errors.Is(err, domain.ErrAssignmentNotFound):
		return http.StatusNotFound, errorResponse{Status: "error", Message: "role assignment not found"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Status: "error", Message: "internal server error"}
}
