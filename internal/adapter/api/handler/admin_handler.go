package handler

import (
	"github.com/labstack/echo/v4"

	"pairchat/internal/domain/repository"
	"pairchat/pkg/response"
	"pairchat/pkg/utils"
)

type AdminHandler struct {
	deadLetterRepo repository.DeadLetterRepository
}

func NewAdminHandler(deadLetterRepo repository.DeadLetterRepository) *AdminHandler {
	return &AdminHandler{
		deadLetterRepo: deadLetterRepo,
	}
}

// ListDeadLetters returns trigger invocations that exhausted their retries,
// newest first.
func (h *AdminHandler) ListDeadLetters(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	letters, total, err := h.deadLetterRepo.List(c.Request().Context(), params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, letters, total, params.Page, params.PageSize)
}

func (h *AdminHandler) GetDeadLetter(c echo.Context) error {
	letter, err := h.deadLetterRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, letter)
}
