package repository

import (
	"context"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

type treeMessageRepository struct {
	store repository.Datastore
}

func NewTreeMessageRepository(store repository.Datastore) repository.MessageRepository {
	return &treeMessageRepository{
		store: store,
	}
}

func (r *treeMessageRepository) GetByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	value, err := r.store.Get(ctx, entity.MessagePath(chatID, messageID))
	if err != nil {
		return nil, errors.Unavailable("Failed to read message", err)
	}
	if value == nil {
		return nil, errors.NotFound("Message", nil)
	}

	var message entity.Message
	if err := utils.Decode(value, &message); err != nil {
		return nil, errors.Validation("Failed to parse message data", err)
	}
	message.ID = messageID
	message.ChatID = chatID
	return &message, nil
}
