package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/api/middleware"
	"github.com/sentra-id/identity-api/internal/core/domain"
)

// ctxPrincipal extracts the principal bound by the Auth middleware and
// performs a fast-fail check before any service call: a protected
// handler reached without a principal means the route was wired
// without the middleware, and the request must not proceed.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok || principal.UserID == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return principal, nil
}
