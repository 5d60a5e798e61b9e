package repository

import (
	"context"

	"pairchat/internal/domain/entity"
)

type ChatRepository interface {
	GetByID(ctx context.Context, ownerID, chatID string) (*entity.Chat, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Chat, error)
}
