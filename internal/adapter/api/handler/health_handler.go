package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pairchat/internal/domain/repository"
)

type HealthHandler struct {
	store repository.Datastore
}

func NewHealthHandler(store repository.Datastore) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CheckDatastore performs a read against the backing datastore.
func (h *HealthHandler) CheckDatastore(c echo.Context) error {
	if _, err := h.store.Get(c.Request().Context(), "health"); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Datastore unavailable",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Datastore reachable",
	})
}
