package handler

import (
	"github.com/labstack/echo/v4"

	"pairchat/internal/domain/entity"
	"pairchat/internal/usecase"
	"pairchat/pkg/response"
	"pairchat/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Text        string `json:"text" validate:"max=2000"`
	Type        string `json:"type" validate:"required,oneof=request approved denied message"`
}

// GetUserChats lists the caller's chat projections, most recent first.
func (h *ChatHandler) GetUserChats(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	chats, total, err := h.chatUseCase.ListChats(c.Request().Context(), userID, params)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, chats, total, params.Page, params.PageSize)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	msg, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ChatID:      c.Param("chatId"),
		RecipientID: req.RecipientID,
		Text:        req.Text,
		Type:        entity.MessageType(req.Type),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"id":      msg.ID,
		"chatId":  msg.ChatID,
		"message": msg,
	})
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	err := h.chatUseCase.MarkRead(c.Request().Context(), userID, c.Param("chatId"), c.Param("messageId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Message marked as read",
	})
}
