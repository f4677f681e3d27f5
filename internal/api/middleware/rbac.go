package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/api/metrics"
	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

// Guard enforces role membership on protected routes. The decision is
// a live query against the assignment ledger, so a role deactivation
// takes effect on the next request — nothing is cached in the token.
// An anonymous request is denied outright.
func Guard(rbac ports.RBACService, roleCodes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				metrics.AuthzDecisionsTotal.WithLabelValues("deny").Inc()
				return domain.ErrForbidden
			}

			allowed, err := rbac.HasAnyRole(c.Request().Context(), principal.UserID, roleCodes...)
			if err != nil {
				return err
			}
			if !allowed {
				metrics.AuthzDecisionsTotal.WithLabelValues("deny").Inc()
				return domain.ErrForbidden
			}

			metrics.AuthzDecisionsTotal.WithLabelValues("allow").Inc()
			return next(c)
		}
	}
}
