package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminMiddleware guards operational endpoints. They exist only in
// development deployments.
type AdminMiddleware struct {
	enabled bool
}

func NewAdminMiddleware(enabled bool) *AdminMiddleware {
	return &AdminMiddleware{
		enabled: enabled,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.enabled {
			return echo.NewHTTPError(http.StatusNotFound, "Not found")
		}

		if _, ok := c.Get("uid").(string); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		return next(c)
	}
}
