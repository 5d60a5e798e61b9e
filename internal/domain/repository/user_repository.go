package repository

import (
	"context"

	"pairchat/internal/domain/entity"
)

type UserRepository interface {
	GetProfile(ctx context.Context, userID string) (*entity.Profile, error)
	GetPhotos(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, userID string, user *entity.User) error
}
