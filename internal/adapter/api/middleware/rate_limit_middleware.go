package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pairchat/internal/infrastructure/ratelimit"
	"pairchat/pkg/logger"
)

// RateLimit throttles requests per client IP.
func RateLimit(rl *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if allowed, wait := rl.Allow(ip, ratelimit.ActionHTTPRequest); !allowed {
				logger.Warn("RATE LIMIT: Blocked request from IP %s (reset in %v)", ip, wait)

				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(wait.Round(time.Second).Seconds()),
				})
			}

			return next(c)
		}
	}
}
