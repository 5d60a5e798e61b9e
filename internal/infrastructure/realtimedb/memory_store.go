package realtimedb

import (
	"context"
	"fmt"
	"sync"

	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

// MemoryStore is an in-process hierarchical datastore with the same value
// semantics as the Realtime Database.
type MemoryStore struct {
	mu   sync.RWMutex
	root map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: make(map[string]interface{})}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Unavailable("datastore read cancelled", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value := lookup(s.root, utils.SplitPath(path))
	return utils.FromTree(value), nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, value interface{}) error {
	return s.Update(ctx, map[string]interface{}{path: value})
}

func (s *MemoryStore) Update(ctx context.Context, updates map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.Unavailable("datastore write cancelled", err)
	}
	if len(updates) == 0 {
		return nil
	}

	paths := make([]string, 0, len(updates))
	values := make(map[string]interface{}, len(updates))
	for path, value := range updates {
		normalized, err := utils.ToTree(value)
		if err != nil {
			return errors.Validation(fmt.Sprintf("invalid value at %q", path), err)
		}
		path = utils.NormalizePath(path)
		paths = append(paths, path)
		values[path] = normalized
	}

	if ancestor, path, ok := overlapping(paths); ok {
		return errors.Validation(fmt.Sprintf("update paths %q and %q overlap", ancestor, path), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range paths {
		value := values[path]
		if path == "" {
			root, ok := value.(map[string]interface{})
			if !ok && value != nil {
				return errors.Validation("root value must be an object", nil)
			}
			if root == nil {
				root = make(map[string]interface{})
			}
			s.root = root
			continue
		}
		setIn(s.root, utils.SplitPath(path), value)
	}
	return nil
}
