package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

func TestListChatsNewestFirst(t *testing.T) {
	h := newHarness(t)
	h.approvedChat(t, "user1", "user2", "c1")
	h.send(t, "user3", "user1", "c2", entity.MessageTypeRequest, "hello")
	h.send(t, "user1", "user2", "c1", entity.MessageTypeMessage, "latest")

	chats, total, err := h.chats.ListChats(context.Background(), "user1", utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, chats, 2)
	assert.Equal(t, "c1", chats[0].ID)
	assert.Equal(t, "latest", chats[0].LastMsgText)
	assert.Equal(t, "c2", chats[1].ID)
	assert.Equal(t, "user3", chats[1].RecipientID)

	page, total, err := h.chats.ListChats(context.Background(), "user1", utils.PaginationParams{Page: 2, PageSize: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	assert.Equal(t, "c2", page[0].ID)
}

func TestListChatsEmpty(t *testing.T) {
	h := newHarness(t)

	chats, total, err := h.chats.ListChats(context.Background(), "user2", utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, chats)
}

func TestSendMessageRejectsUnknownType(t *testing.T) {
	h := newHarness(t)

	_, err := h.chats.SendMessage(context.Background(), "user1", SendMessageInput{
		ChatID:      "c1",
		RecipientID: "user2",
		Type:        "poke",
	})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestSendMessageStoresSentMessage(t *testing.T) {
	h := newHarness(t)

	msg := h.send(t, "user1", "user2", "c1", entity.MessageTypeRequest, "hi")
	stored, _ := h.get(t, entity.MessagePath("c1", msg.ID)).(map[string]interface{})

	assert.Equal(t, "user1", stored["senderId"])
	assert.Equal(t, "user2", stored["recipientId"])
	assert.Equal(t, msg.Ts, stored["ts"])
	assert.Equal(t, "delivered", stored["status"])
}
