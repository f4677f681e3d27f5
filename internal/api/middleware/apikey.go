package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const apiKeyHeader = "X-API-Key"

// APIKey gates all requests behind a static API key. An empty key
// disables the check entirely — whether to require a key is an
// explicit deployment choice, not a default.
func APIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}
			presented := c.Request().Header.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			return next(c)
		}
	}
}
