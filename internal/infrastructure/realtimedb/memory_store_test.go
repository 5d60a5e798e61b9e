package realtimedb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/pkg/errors"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "/users/u1/profile", map[string]interface{}{
		"firstName": "Ann",
		"age":       30,
		"about":     nil,
	}))

	value, err := store.Get(ctx, "users/u1/profile")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"firstName": "Ann", "age": float64(30)}, value)

	name, err := store.Get(ctx, "users/u1/profile/firstName/")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	missing, err := store.Get(ctx, "users/u2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ListsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "users/u1/photos", []string{"a", "b"}))

	photos, err := store.Get(ctx, "users/u1/photos")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, photos)

	first, err := store.Get(ctx, "users/u1/photos/0")
	require.NoError(t, err)
	assert.Equal(t, "a", first)
}

func TestMemoryStore_SparseIndexKeysStayObject(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "x", map[string]interface{}{"6": "test"}))

	value, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"6": "test"}, value)
}

func TestMemoryStore_DeletePrunesEmptyParents(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "chats/u1/c1/status", "pending"))
	require.NoError(t, store.Set(ctx, "chats/u1/c1/status", nil))

	chats, err := store.Get(ctx, "chats")
	require.NoError(t, err)
	assert.Nil(t, chats)

	require.NoError(t, store.Set(ctx, "a", map[string]interface{}{"b": map[string]interface{}{}}))
	a, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestMemoryStore_MultiPathUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "chats/u1/c1", map[string]interface{}{"status": "pending", "lastMsgText": "hi"}))

	err := store.Update(ctx, map[string]interface{}{
		"chats/u1/c1/status": "approved",
		"chats/u2/c1/status": "approved",
		"messages/c1/m1":     map[string]interface{}{"status": "delivered"},
	})
	require.NoError(t, err)

	chat, err := store.Get(ctx, "chats/u1/c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "approved", "lastMsgText": "hi"}, chat)

	other, err := store.Get(ctx, "chats/u2/c1/status")
	require.NoError(t, err)
	assert.Equal(t, "approved", other)
}

func TestMemoryStore_UpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Update(ctx, map[string]interface{}{
		"chats/u1/c1/status": "approved",
		"chats/u2/c1":        map[string]interface{}{"bad.key": 1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	value, err := store.Get(ctx, "chats")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryStore_UpdateRejectsOverlappingPaths(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Update(ctx, map[string]interface{}{
		"chats/u1":        map[string]interface{}{"c1": "x"},
		"chats/u1/c1/foo": "y",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "m", map[string]interface{}{"status": "sent"}))

	value, err := store.Get(ctx, "m")
	require.NoError(t, err)
	value.(map[string]interface{})["status"] = "read"

	status, err := store.Get(ctx, "m/status")
	require.NoError(t, err)
	assert.Equal(t, "sent", status)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Get(ctx, "x")
	assert.True(t, errors.Is(err, "DEPENDENCY_UNAVAILABLE"))
}
