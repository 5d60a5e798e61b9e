package usecase

import (
	"context"
	"fmt"
	"log"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

// MessageUseCase drives the message lifecycle after a client write lands.
// Its writes carry system privilege and bypass the authorization policy.
type MessageUseCase struct {
	store       repository.Datastore
	messageRepo repository.MessageRepository
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
}

func NewMessageUseCase(
	store repository.Datastore,
	messageRepo repository.MessageRepository,
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
) *MessageUseCase {
	return &MessageUseCase{
		store:       store,
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
	}
}

// HandleCreated applies the effect of a new message and marks it delivered
// in the same multi-path update. A message that is no longer "sent" has
// already been handled, so re-delivery is a no-op.
func (uc *MessageUseCase) HandleCreated(ctx context.Context, chatID, messageID string) error {
	msg, err := uc.messageRepo.GetByID(ctx, chatID, messageID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			log.Printf("HandleCreated: message %s/%s no longer exists", chatID, messageID)
			return nil
		}
		return err
	}

	if msg.Status != entity.MessageStatusSent {
		return nil
	}

	updates := entity.Updates{}
	switch msg.Type {
	case entity.MessageTypeRequest:
		err = uc.openChat(ctx, msg, updates)
	case entity.MessageTypeApproved, entity.MessageTypeDenied:
		err = uc.settleChat(ctx, msg, updates)
	case entity.MessageTypeMessage:
		err = uc.summarize(ctx, msg, updates)
	default:
		log.Printf("HandleCreated Error: message %s/%s has unknown type %q", chatID, messageID, msg.Type)
		return errors.Validation(fmt.Sprintf("unknown message type %q", msg.Type), nil)
	}
	if err != nil {
		return err
	}

	updates.SetMessageStatus(chatID, messageID, entity.MessageStatusDelivered)
	if err := uc.store.Update(ctx, updates); err != nil {
		log.Printf("HandleCreated Error: failed to apply %s effect for %s/%s: %v", msg.Type, chatID, messageID, err)
		return errors.Unavailable("Failed to apply message effect", err)
	}
	return nil
}

// openChat creates both mirrored projections for a request.
func (uc *MessageUseCase) openChat(ctx context.Context, msg *entity.Message, updates entity.Updates) error {
	sender, err := uc.participant(ctx, msg.SenderID)
	if err != nil {
		return err
	}
	recipient, err := uc.participant(ctx, msg.RecipientID)
	if err != nil {
		return err
	}

	updates.SetChat(msg.SenderID, entity.NewChat(msg.ChatID, recipient, msg))
	updates.SetChat(msg.RecipientID, entity.NewChat(msg.ChatID, sender, msg))
	return nil
}

// settleChat moves both projections to approved or denied. A chat that is
// already settled keeps its status; the first processed answer wins.
func (uc *MessageUseCase) settleChat(ctx context.Context, msg *entity.Message, updates entity.Updates) error {
	chat, err := uc.senderChat(ctx, msg)
	if err != nil || chat == nil {
		return err
	}
	if chat.Status != entity.ChatStatusPending {
		log.Printf("HandleCreated: chat %s already %s, ignoring %s", msg.ChatID, chat.Status, msg.Type)
		return nil
	}

	status, _ := msg.Type.ChatStatus()
	fields := summaryIfNewer(chat, msg)
	fields[entity.ChatFieldStatus] = status
	updates.SetPairFields(msg.SenderID, chat.RecipientID, msg.ChatID, fields)
	return nil
}

// summarize refreshes the lastMsg* summary of both projections.
func (uc *MessageUseCase) summarize(ctx context.Context, msg *entity.Message, updates entity.Updates) error {
	chat, err := uc.senderChat(ctx, msg)
	if err != nil || chat == nil {
		return err
	}

	updates.SetPairFields(msg.SenderID, chat.RecipientID, msg.ChatID, summaryIfNewer(chat, msg))
	return nil
}

// senderChat returns the sender's projection, or nil when it does not exist.
func (uc *MessageUseCase) senderChat(ctx context.Context, msg *entity.Message) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, msg.SenderID, msg.ChatID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			log.Printf("HandleCreated: no projection %s for sender %s, marking delivered only", msg.ChatID, msg.SenderID)
			return nil, nil
		}
		return nil, err
	}
	return chat, nil
}

// summaryIfNewer returns the summary fields for msg unless the projection
// already summarizes a more recent message.
func summaryIfNewer(chat *entity.Chat, msg *entity.Message) map[string]interface{} {
	if msg.Ts < chat.LastMsgTs {
		return map[string]interface{}{}
	}
	return entity.SummaryFields(msg)
}

// participant loads the denormalized identity kept about userID in the
// partner's projection.
func (uc *MessageUseCase) participant(ctx context.Context, userID string) (entity.Participant, error) {
	p := entity.Participant{ID: userID}

	profile, err := loadProfile(ctx, uc.userRepo, userID)
	if err != nil {
		return p, err
	}
	if profile != nil {
		p.Name = profile.FirstName
	}

	var photos []string
	if profile.PrimaryPhoto() == nil {
		if photos, err = loadPhotos(ctx, uc.userRepo, userID); err != nil {
			return p, err
		}
	}
	p.Photo = entity.EffectivePhoto(profile, photos)
	return p, nil
}

// loadProfile returns nil without error when the user has no profile.
func loadProfile(ctx context.Context, users repository.UserRepository, userID string) (*entity.Profile, error) {
	profile, err := users.GetProfile(ctx, userID)
	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, "NOT_FOUND"):
		return nil, nil
	case errors.Is(err, "VALIDATION_ERROR"):
		return nil, err
	default:
		return nil, errors.Unavailable(fmt.Sprintf("Failed to read profile of %s", userID), err)
	}
}

func loadPhotos(ctx context.Context, users repository.UserRepository, userID string) ([]string, error) {
	photos, err := users.GetPhotos(ctx, userID)
	switch {
	case err == nil:
		return photos, nil
	case errors.Is(err, "VALIDATION_ERROR"):
		return nil, err
	default:
		return nil, errors.Unavailable(fmt.Sprintf("Failed to read photos of %s", userID), err)
	}
}

// HandleUpdated propagates a read receipt to both projections when the
// message is the chat's latest.
func (uc *MessageUseCase) HandleUpdated(ctx context.Context, chatID, messageID string, before, after interface{}) error {
	var prev, next entity.Message
	if err := utils.Decode(before, &prev); err != nil {
		return errors.Validation("Failed to parse previous message", err)
	}
	if err := utils.Decode(after, &next); err != nil {
		return errors.Validation("Failed to parse message", err)
	}

	if prev.Status == next.Status || next.Status != entity.MessageStatusRead {
		return nil
	}

	chat, err := uc.chatRepo.GetByID(ctx, next.RecipientID, chatID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return nil
		}
		return err
	}
	if chat.LastMsgID != messageID {
		return nil
	}

	updates := entity.Updates{}
	updates.SetPairFields(next.RecipientID, chat.RecipientID, chatID, map[string]interface{}{
		entity.ChatFieldLastMsgStatus: entity.MessageStatusRead,
	})
	if err := uc.store.Update(ctx, updates); err != nil {
		log.Printf("HandleUpdated Error: failed to mark %s/%s read: %v", chatID, messageID, err)
		return errors.Unavailable("Failed to update read status", err)
	}
	return nil
}
