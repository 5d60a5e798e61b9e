package repository

import (
	"context"
	"sort"
	"sync"

	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/repository"
	"pairchat/pkg/errors"
)

// memoryDeadLetterRepository keeps dead letters for the in-memory backend.
type memoryDeadLetterRepository struct {
	mu      sync.RWMutex
	letters map[string]*entity.DeadLetter
}

func NewMemoryDeadLetterRepository() repository.DeadLetterRepository {
	return &memoryDeadLetterRepository{letters: make(map[string]*entity.DeadLetter)}
}

func (r *memoryDeadLetterRepository) Record(ctx context.Context, letter *entity.DeadLetter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *letter
	r.letters[letter.ID] = &copied
	return nil
}

func (r *memoryDeadLetterRepository) GetByID(ctx context.Context, id string) (*entity.DeadLetter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	letter, ok := r.letters[id]
	if !ok {
		return nil, errors.NotFound("Dead letter", nil)
	}
	copied := *letter
	return &copied, nil
}

func (r *memoryDeadLetterRepository) List(ctx context.Context, limit, offset int) ([]*entity.DeadLetter, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	letters := make([]*entity.DeadLetter, 0, len(r.letters))
	for _, letter := range r.letters {
		copied := *letter
		letters = append(letters, &copied)
	}
	sort.Slice(letters, func(i, j int) bool {
		return letters[i].FailedAt.After(letters[j].FailedAt)
	})

	total := int64(len(letters))
	if offset > len(letters) {
		offset = len(letters)
	}
	letters = letters[offset:]
	if limit > 0 && limit < len(letters) {
		letters = letters[:limit]
	}
	return letters, total, nil
}
