package repository

import (
	"context"
	"sort"
	"strconv"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

type treeChatRepository struct {
	store repository.Datastore
}

func NewTreeChatRepository(store repository.Datastore) repository.ChatRepository {
	return &treeChatRepository{
		store: store,
	}
}

func (r *treeChatRepository) GetByID(ctx context.Context, ownerID, chatID string) (*entity.Chat, error) {
	value, err := r.store.Get(ctx, entity.ChatPath(ownerID, chatID))
	if err != nil {
		return nil, errors.Unavailable("Failed to read chat", err)
	}
	if value == nil {
		return nil, errors.NotFound("Chat", nil)
	}

	var chat entity.Chat
	if err := utils.Decode(value, &chat); err != nil {
		return nil, errors.Validation("Failed to parse chat data", err)
	}
	chat.ID = chatID
	return &chat, nil
}

func (r *treeChatRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Chat, error) {
	value, err := r.store.Get(ctx, entity.ChatsPath(ownerID))
	if err != nil {
		return nil, errors.Unavailable("Failed to read chats", err)
	}

	children := entries(value)
	chats := make([]*entity.Chat, 0, len(children))
	for chatID, raw := range children {
		var chat entity.Chat
		if err := utils.Decode(raw, &chat); err != nil {
			return nil, errors.Validation("Failed to parse chat data", err)
		}
		chat.ID = chatID
		chats = append(chats, &chat)
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].ID < chats[j].ID
	})
	return chats, nil
}

// entries returns the children of a tree node keyed by name. Nodes read back
// as lists are keyed by index.
func entries(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		out := make(map[string]interface{}, len(v))
		for i, child := range v {
			if child != nil {
				out[strconv.Itoa(i)] = child
			}
		}
		return out
	}
	return nil
}
