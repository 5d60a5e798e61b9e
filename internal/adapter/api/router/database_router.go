package router

import (
	"github.com/labstack/echo/v4"

	"pairchat/internal/adapter/api/handler"
	"pairchat/internal/adapter/api/middleware"
)

// SetupDatabaseRouter exposes the policy-gated tree. Anonymous callers are
// let through; the policy decides what they may see.
func SetupDatabaseRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	databaseHandler := handler.GetDatabaseHandler()

	dbGroup := e.Group("/v1/db")
	dbGroup.Use(authMiddleware.Optional)

	dbGroup.GET("/*", databaseHandler.Get)
	dbGroup.PUT("/*", databaseHandler.Put)
	dbGroup.PATCH("/*", databaseHandler.Patch)
	dbGroup.DELETE("/*", databaseHandler.Delete)
}
