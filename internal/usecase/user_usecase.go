package usecase

import (
	"context"
	"log"
	"sync"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	identity IdentityProvider
	known    sync.Map
}

func NewUserUseCase(userRepo repository.UserRepository, identity IdentityProvider) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		identity: identity,
	}
}

// EnsureUser creates the profile and meta records of a user on their first
// authenticated request.
func (uc *UserUseCase) EnsureUser(ctx context.Context, uid string) error {
	if _, ok := uc.known.Load(uid); ok {
		return nil
	}

	_, err := uc.userRepo.GetProfile(ctx, uid)
	if err == nil {
		uc.known.Store(uid, true)
		return nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		log.Printf("EnsureUser Error: failed to read profile of %s: %v", uid, err)
		return err
	}

	identity, err := uc.identity.LookupUser(ctx, uid)
	if err != nil {
		log.Printf("EnsureUser Error: failed to load identity of %s: %v", uid, err)
		return err
	}

	firstName, lastName := entity.SplitDisplayName(identity.DisplayName)
	user := &entity.User{
		Profile: &entity.Profile{
			UID:       uid,
			FirstName: firstName,
			LastName:  lastName,
		},
		Meta: &entity.Meta{Email: identity.Email},
	}

	if err := uc.userRepo.Create(ctx, uid, user); err != nil {
		log.Printf("EnsureUser Error: failed to create user %s: %v", uid, err)
		return err
	}

	log.Printf("User %s onboarded", uid)
	uc.known.Store(uid, true)
	return nil
}
