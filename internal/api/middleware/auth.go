package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

const principalKey = "principal"

// Auth verifies the bearer access token and binds the resolved
// principal into the request context. Verification is signature +
// expiry only — no store round-trip on the hot path. Refresh tokens
// are rejected here; they are only good for the refresh exchange.
func Auth(verifier ports.TokenSigner) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return domain.ErrInvalidToken
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrInvalidToken
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				return err
			}
			if claims.TokenType != domain.TokenTypeAccess {
				return domain.ErrInvalidToken
			}

			c.Set(principalKey, domain.Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
			})

			return next(c)
		}
	}
}

// PrincipalFrom extracts the principal bound by Auth. The bool is
// false for anonymous requests (routes without the Auth middleware).
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}
