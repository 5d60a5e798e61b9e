package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/internal/infrastructure/metrics"
	"pairchat/pkg/errors"
	"pairchat/pkg/logger"
	"pairchat/pkg/utils"
)

// ChatSyncUseCase keeps the denormalized partner identity in chat
// projections in line with the partner's profile.
type ChatSyncUseCase struct {
	store       repository.Datastore
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	concurrency int
}

func NewChatSyncUseCase(
	store repository.Datastore,
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	concurrency int,
) *ChatSyncUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ChatSyncUseCase{
		store:       store,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		concurrency: concurrency,
	}
}

func (uc *ChatSyncUseCase) HandleProfileUpdated(ctx context.Context, userID string, before, after interface{}) error {
	var prev, next entity.Profile
	if err := decodeOptional(before, &prev); err != nil {
		return errors.Validation("Failed to parse previous profile", err)
	}
	if err := decodeOptional(after, &next); err != nil {
		return errors.Validation("Failed to parse profile", err)
	}

	fields := map[string]interface{}{}
	if prev.FirstName != next.FirstName {
		fields[entity.ChatFieldRecipientName] = next.FirstName
	}
	if !samePhoto(prev.PrimaryPhoto(), next.PrimaryPhoto()) {
		var photos []string
		if prev.PrimaryPhoto() == nil || next.PrimaryPhoto() == nil {
			var err error
			if photos, err = loadPhotos(ctx, uc.userRepo, userID); err != nil {
				log.Printf("HandleProfileUpdated Error: %v", err)
				return err
			}
		}
		if photo := entity.EffectivePhoto(&next, photos); !samePhoto(entity.EffectivePhoto(&prev, photos), photo) {
			fields[entity.ChatFieldRecipientUserPhoto] = photo
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return uc.propagate(ctx, userID, fields)
}

// HandlePhotosWritten reacts to the photo list only when its first entry
// changes and the profile carries no photos of its own.
func (uc *ChatSyncUseCase) HandlePhotosWritten(ctx context.Context, userID string, before, after interface{}) error {
	var prev, next []string
	if err := decodeOptional(before, &prev); err != nil {
		return errors.Validation("Failed to parse previous photos", err)
	}
	if err := decodeOptional(after, &next); err != nil {
		return errors.Validation("Failed to parse photos", err)
	}

	photo := entity.FirstPhoto(next)
	if samePhoto(entity.FirstPhoto(prev), photo) {
		return nil
	}

	profile, err := loadProfile(ctx, uc.userRepo, userID)
	if err != nil {
		log.Printf("HandlePhotosWritten Error: %v", err)
		return err
	}
	if profile.PrimaryPhoto() != nil {
		return nil
	}
	return uc.propagate(ctx, userID, map[string]interface{}{
		entity.ChatFieldRecipientUserPhoto: photo,
	})
}

// propagate writes fields into the partner's projection of every chat the
// user owns. Each partner is updated independently; failures are collected
// and reported together after all partners were attempted.
func (uc *ChatSyncUseCase) propagate(ctx context.Context, userID string, fields map[string]interface{}) error {
	chats, err := uc.chatRepo.ListByOwner(ctx, userID)
	if err != nil {
		log.Printf("Propagate Error: failed to list chats of %s: %v", userID, err)
		return err
	}
	if len(chats) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(uc.concurrency)

	for _, chat := range chats {
		chat := chat
		g.Go(func() error {
			updates := entity.Updates{}
			for field, value := range fields {
				updates.SetChatField(chat.RecipientID, chat.ID, field, value)
			}

			if err := uc.store.Update(ctx, updates); err != nil {
				logger.LogFanoutError(userID, chat.ID, chat.RecipientID, err)
				metrics.IncFanoutFailure()
				mu.Lock()
				errs = append(errs, fmt.Errorf("chat %s partner %s: %w", chat.ID, chat.RecipientID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if len(errs) > 0 {
		return errors.Unavailable(
			fmt.Sprintf("Profile propagation failed for %d of %d chats", len(errs), len(chats)),
			errors.Join(errs...),
		)
	}
	return nil
}

func decodeOptional(value interface{}, out interface{}) error {
	if value == nil {
		return nil
	}
	return utils.Decode(value, out)
}

func samePhoto(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
