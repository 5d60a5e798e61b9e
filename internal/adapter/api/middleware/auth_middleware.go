package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"pairchat/pkg/logger"
	"pairchat/pkg/response"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Onboarder creates the records of a user on first sight.
type Onboarder interface {
	EnsureUser(ctx context.Context, uid string) error
}

type AuthMiddleware struct {
	verifier  TokenVerifier
	onboarder Onboarder
}

// NewAuthMiddleware builds the middleware. onboarder may be nil.
func NewAuthMiddleware(verifier TokenVerifier, onboarder Onboarder) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		onboarder: onboarder,
	}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		if err := m.onboard(c, uid); err != nil {
			return response.Error(c, err)
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// Optional authenticates when a valid token is present and lets the request
// through anonymously otherwise.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return next(c)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			logger.Debug("Ignoring invalid token: %v", err)
			return next(c)
		}

		if err := m.onboard(c, uid); err != nil {
			return response.Error(c, err)
		}

		c.Set("uid", uid)
		return next(c)
	}
}

func (m *AuthMiddleware) onboard(c echo.Context, uid string) error {
	if m.onboarder == nil {
		return nil
	}
	return m.onboarder.EnsureUser(c.Request().Context(), uid)
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so the token query parameter is accepted as well.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
	}
	return parts[1], nil
}
