package handler

import (
	"github.com/labstack/echo/v4"

	"pairchat/internal/usecase"
	"pairchat/pkg/errors"
	"pairchat/pkg/response"
	"pairchat/pkg/utils"
)

// DatabaseHandler exposes the tree under /v1/db/*. Every call goes through
// the authorization gateway.
type DatabaseHandler struct {
	gatewayUseCase *usecase.GatewayUseCase
}

func NewDatabaseHandler(gatewayUseCase *usecase.GatewayUseCase) *DatabaseHandler {
	return &DatabaseHandler{
		gatewayUseCase: gatewayUseCase,
	}
}

type writeResult struct {
	Path string `json:"path"`
}

func (h *DatabaseHandler) Get(c echo.Context) error {
	value, err := h.gatewayUseCase.Read(c.Request().Context(), actorFrom(c), c.Param("*"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, value)
}

// Put replaces the node. A null body deletes it.
func (h *DatabaseHandler) Put(c echo.Context) error {
	var value interface{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &value); err != nil {
		return response.Error(c, err)
	}

	path := utils.NormalizePath(c.Param("*"))
	if err := h.gatewayUseCase.Set(c.Request().Context(), actorFrom(c), path, value); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, writeResult{Path: path})
}

// Patch merges a JSON object of relative paths into the node.
func (h *DatabaseHandler) Patch(c echo.Context) error {
	var patch map[string]interface{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return response.Error(c, errors.BadRequest("Patch body must be a JSON object", err))
	}

	path := utils.NormalizePath(c.Param("*"))
	if err := h.gatewayUseCase.Update(c.Request().Context(), actorFrom(c), path, patch); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, writeResult{Path: path})
}

func (h *DatabaseHandler) Delete(c echo.Context) error {
	path := utils.NormalizePath(c.Param("*"))
	if err := h.gatewayUseCase.Set(c.Request().Context(), actorFrom(c), path, nil); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, writeResult{Path: path})
}
