package handler

import (
	"github.com/labstack/echo/v4"

	"pairchat/internal/domain/policy"
	"pairchat/internal/domain/repository"
	"pairchat/internal/usecase"
)

var (
	databaseHandler *DatabaseHandler
	chatHandler     *ChatHandler
	healthHandler   *HealthHandler
	adminHandler    *AdminHandler
)

func Setup(
	gatewayUseCase *usecase.GatewayUseCase,
	chatUseCase *usecase.ChatUseCase,
	store repository.Datastore,
	deadLetterRepo repository.DeadLetterRepository,
) {
	databaseHandler = NewDatabaseHandler(gatewayUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	healthHandler = NewHealthHandler(store)
	adminHandler = NewAdminHandler(deadLetterRepo)
}

func GetDatabaseHandler() *DatabaseHandler {
	return databaseHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

// actorFrom returns the authenticated caller, or nil for anonymous requests.
func actorFrom(c echo.Context) *policy.Actor {
	uid, ok := c.Get("uid").(string)
	if !ok || uid == "" {
		return nil
	}
	return &policy.Actor{ID: uid}
}
