package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain/entity"
	"pairchat/internal/infrastructure/realtimedb"
	"pairchat/pkg/errors"
)

func TestTreeChatRepository(t *testing.T) {
	ctx := context.Background()
	store := realtimedb.NewMemoryStore()
	repo := NewTreeChatRepository(store)

	_, err := repo.GetByID(ctx, "u1", "c1")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	require.NoError(t, store.Update(ctx, map[string]interface{}{
		"chats/u1/c1": map[string]interface{}{"recipientId": "u2", "status": "pending", "lastMsgTs": 10},
		"chats/u1/c2": map[string]interface{}{"recipientId": "u3", "status": "approved", "recipientUserPhoto": "p"},
	}))

	chat, err := repo.GetByID(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)
	assert.Equal(t, "u2", chat.RecipientID)
	assert.Equal(t, entity.ChatStatusPending, chat.Status)
	assert.Equal(t, float64(10), chat.LastMsgTs)
	assert.Nil(t, chat.RecipientUserPhoto)

	chats, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "c2", chats[1].ID)
	require.NotNil(t, chats[1].RecipientUserPhoto)
	assert.Equal(t, "p", *chats[1].RecipientUserPhoto)

	none, err := repo.ListByOwner(ctx, "u9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTreeMessageRepository(t *testing.T) {
	ctx := context.Background()
	store := realtimedb.NewMemoryStore()
	repo := NewTreeMessageRepository(store)

	require.NoError(t, store.Set(ctx, "messages/c1/m1", map[string]interface{}{
		"senderId":    "u1",
		"recipientId": "u2",
		"text":        "hello",
		"ts":          int64(1700000000000),
		"type":        "message",
		"status":      "delivered",
	}))

	msg, err := repo.GetByID(ctx, "c1", "m1")
	require.NoError(t, err)
	assert.Equal(t, &entity.Message{
		ID:          "m1",
		ChatID:      "c1",
		SenderID:    "u1",
		RecipientID: "u2",
		Text:        "hello",
		Ts:          1700000000000,
		Type:        entity.MessageTypeMessage,
		Status:      entity.MessageStatusDelivered,
	}, msg)

	_, err = repo.GetByID(ctx, "c1", "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestTreeUserRepository(t *testing.T) {
	ctx := context.Background()
	store := realtimedb.NewMemoryStore()
	repo := NewTreeUserRepository(store)

	_, err := repo.GetProfile(ctx, "u1")
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	require.NoError(t, repo.Create(ctx, "u1", &entity.User{
		Profile: &entity.Profile{FirstName: "Ann", LastName: "Lee", Photos: []string{"p0", "p1"}},
		Meta:    &entity.Meta{Email: "ann@example.com"},
	}))

	profile, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", profile.FirstName)
	assert.Nil(t, profile.Gender)
	assert.Equal(t, []string{"p0", "p1"}, profile.Photos)

	email, err := store.Get(ctx, "users/u1/meta/email")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", email)

	photos, err := repo.GetPhotos(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, photos)

	require.NoError(t, store.Set(ctx, "users/u1/photos", []string{"x"}))
	photos, err = repo.GetPhotos(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, photos)

	_, err = repo.GetProfile(ctx, "u2")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMemoryDeadLetterRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeadLetterRepository()
	now := time.Now()

	require.NoError(t, repo.Record(ctx, &entity.DeadLetter{ID: "old", FailedAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Record(ctx, &entity.DeadLetter{ID: "new", FailedAt: now}))

	letters, total, err := repo.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, letters, 1)
	assert.Equal(t, "new", letters[0].ID)

	letters, _, err = repo.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, letters)

	letter, err := repo.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "old", letter.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
