package usecase

import (
	"context"

	"pairchat/internal/domain/entity"
)

type IdentityProvider interface {
	LookupUser(ctx context.Context, uid string) (*entity.Identity, error)
}

// ChatNotifier pushes projection changes to the owner's live connections.
type ChatNotifier interface {
	NotifyChat(ownerID, chatID string, chat interface{}) error
}
