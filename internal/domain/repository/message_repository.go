package repository

import (
	"context"

	"pairchat/internal/domain/entity"
)

type MessageRepository interface {
	GetByID(ctx context.Context, chatID, messageID string) (*entity.Message, error)
}
