package repository

import (
	"context"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

type treeUserRepository struct {
	store repository.Datastore
}

func NewTreeUserRepository(store repository.Datastore) repository.UserRepository {
	return &treeUserRepository{
		store: store,
	}
}

func (r *treeUserRepository) GetProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	value, err := r.store.Get(ctx, entity.ProfilePath(userID))
	if err != nil {
		return nil, errors.Unavailable("Failed to read profile", err)
	}
	if value == nil {
		return nil, errors.NotFound("Profile", nil)
	}
	return decodeProfile(value)
}

func (r *treeUserRepository) GetPhotos(ctx context.Context, userID string) ([]string, error) {
	value, err := r.store.Get(ctx, entity.PhotosPath(userID))
	if err != nil {
		return nil, errors.Unavailable("Failed to read photos", err)
	}
	if value == nil {
		return nil, nil
	}

	var photos []string
	if err := utils.Decode(value, &photos); err != nil {
		return nil, errors.Validation("Failed to parse photos", err)
	}
	return photos, nil
}

// Create writes profile and meta in one multi-path update.
func (r *treeUserRepository) Create(ctx context.Context, userID string, user *entity.User) error {
	updates := map[string]interface{}{
		entity.ProfilePath(userID): user.Profile,
		entity.MetaPath(userID):    user.Meta,
	}
	if err := r.store.Update(ctx, updates); err != nil {
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func decodeProfile(value interface{}) (*entity.Profile, error) {
	var profile entity.Profile
	if err := utils.Decode(value, &profile); err != nil {
		return nil, errors.Validation("Failed to parse profile data", err)
	}
	return &profile, nil
}
