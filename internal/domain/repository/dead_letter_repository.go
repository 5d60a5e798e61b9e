package repository

import (
	"context"

	"pairchat/internal/domain/entity"
)

type DeadLetterRepository interface {
	Record(ctx context.Context, letter *entity.DeadLetter) error
	GetByID(ctx context.Context, id string) (*entity.DeadLetter, error)
	List(ctx context.Context, limit, offset int) ([]*entity.DeadLetter, int64, error)
}
