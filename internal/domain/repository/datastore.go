package repository

import "context"

// Datastore is a key-addressable hierarchical tree. Paths are slash separated.
// Values are JSON-shaped; a nil value means "absent" on reads and "delete" on writes.
type Datastore interface {
	Get(ctx context.Context, path string) (interface{}, error)
	Set(ctx context.Context, path string, value interface{}) error
	// Update applies every entry atomically: readers observe all of them or none.
	Update(ctx context.Context, updates map[string]interface{}) error
}
