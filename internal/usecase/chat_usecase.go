package usecase

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/policy"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

// ChatUseCase is the convenience API over the gateway. It builds well-formed
// writes for clients but grants nothing beyond what the policy allows.
type ChatUseCase struct {
	gateway  *GatewayUseCase
	chatRepo repository.ChatRepository
	now      func() time.Time
}

func NewChatUseCase(gateway *GatewayUseCase, chatRepo repository.ChatRepository) *ChatUseCase {
	return &ChatUseCase{
		gateway:  gateway,
		chatRepo: chatRepo,
		now:      time.Now,
	}
}

type SendMessageInput struct {
	ChatID      string
	RecipientID string
	Text        string
	Type        entity.MessageType
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if !input.Type.Valid() {
		return nil, errors.Validation("Unknown message type", nil)
	}

	msg := &entity.Message{
		ID:          uuid.New().String(),
		ChatID:      input.ChatID,
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Text:        input.Text,
		Ts:          float64(uc.now().UnixMilli()),
		Type:        input.Type,
		Status:      entity.MessageStatusSent,
	}

	actor := &policy.Actor{ID: senderID}
	if err := uc.gateway.Set(ctx, actor, entity.MessagePath(msg.ChatID, msg.ID), msg); err != nil {
		log.Printf("SendMessage Error: %s -> %s in %s: %v", senderID, input.RecipientID, input.ChatID, err)
		return nil, err
	}
	return msg, nil
}

// MarkRead is the recipient's read receipt.
func (uc *ChatUseCase) MarkRead(ctx context.Context, actorID, chatID, messageID string) error {
	actor := &policy.Actor{ID: actorID}
	err := uc.gateway.Update(ctx, actor, entity.MessagePath(chatID, messageID), map[string]interface{}{
		"status": entity.MessageStatusRead,
	})
	if err != nil {
		log.Printf("MarkRead Error: %s on %s/%s: %v", actorID, chatID, messageID, err)
	}
	return err
}

// ListChats returns the actor's projections, most recent activity first.
func (uc *ChatUseCase) ListChats(ctx context.Context, actorID string, params utils.PaginationParams) ([]*entity.Chat, int64, error) {
	actor := &policy.Actor{ID: actorID}
	if err := uc.gateway.CheckRead(ctx, actor, entity.ChatsPath(actorID)); err != nil {
		return nil, 0, err
	}

	chats, err := uc.chatRepo.ListByOwner(ctx, actorID)
	if err != nil {
		log.Printf("ListChats Error: %s: %v", actorID, err)
		return nil, 0, err
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastMsgTs > chats[j].LastMsgTs
	})

	start, end := params.Window(len(chats))
	return chats[start:end], int64(len(chats)), nil
}
