package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	repo "pairchat/internal/adapter/repository"
	"pairchat/internal/domain/entity"
	"pairchat/internal/domain/policy"
	"pairchat/internal/domain/repository"
	"pairchat/internal/infrastructure/realtimedb"
	"pairchat/internal/infrastructure/trigger"
)

var testNow = time.UnixMilli(1700000000000)

// faultyStore counts writes and injects failures for selected paths.
type faultyStore struct {
	repository.Datastore

	mu         sync.Mutex
	updates    int
	failGet    func(path string) bool
	failUpdate func(updates map[string]interface{}) bool
}

func (s *faultyStore) Get(ctx context.Context, path string) (interface{}, error) {
	s.mu.Lock()
	fail := s.failGet != nil && s.failGet(path)
	s.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("read of %s failed", path)
	}
	return s.Datastore.Get(ctx, path)
}

func (s *faultyStore) Update(ctx context.Context, updates map[string]interface{}) error {
	s.mu.Lock()
	s.updates++
	fail := s.failUpdate != nil && s.failUpdate(updates)
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("update failed")
	}
	return s.Datastore.Update(ctx, updates)
}

func (s *faultyStore) setFailures(get func(string) bool, update func(map[string]interface{}) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = get
	s.failUpdate = update
}

func (s *faultyStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func touches(prefix string) func(map[string]interface{}) bool {
	return func(updates map[string]interface{}) bool {
		for path := range updates {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// stepClock advances one millisecond per reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type harness struct {
	raw        *realtimedb.MemoryStore
	system     *faultyStore
	dispatcher *trigger.Dispatcher
	gateway    *GatewayUseCase
	chats      *ChatUseCase
	messages   *MessageUseCase
	chatSync   *ChatSyncUseCase
}

func newHarness(t *testing.T) *harness {
	raw := realtimedb.NewMemoryStore()
	dispatcher := trigger.NewDispatcher(trigger.Options{MaxAttempts: 3, InitialBackoff: time.Millisecond})
	observed := trigger.NewObservedStore(raw, dispatcher)
	system := &faultyStore{Datastore: observed}

	chatRepo := repo.NewTreeChatRepository(system)
	userRepo := repo.NewTreeUserRepository(system)
	messages := NewMessageUseCase(system, repo.NewTreeMessageRepository(system), chatRepo, userRepo)
	chatSync := NewChatSyncUseCase(system, chatRepo, userRepo, 4)

	clock := &stepClock{now: testNow}
	gateway := NewGatewayUseCase(observed, policy.New(), nil)
	gateway.now = clock.Now
	chats := NewChatUseCase(gateway, repo.NewTreeChatRepository(observed))
	chats.now = clock.Now

	RegisterTriggers(dispatcher, messages, chatSync, nil)
	t.Cleanup(dispatcher.Close)

	h := &harness{
		raw:        raw,
		system:     system,
		dispatcher: dispatcher,
		gateway:    gateway,
		chats:      chats,
		messages:   messages,
		chatSync:   chatSync,
	}
	h.seedUsers(t)
	return h
}

func (h *harness) seedUsers(t *testing.T) {
	ctx := context.Background()
	profile := func(uid, name, gender string, photos ...string) map[string]interface{} {
		p := map[string]interface{}{
			"uid":       uid,
			"firstName": name,
			"lastName":  "Test",
			"gender":    gender,
			"about":     "",
			"interests": "",
		}
		if len(photos) > 0 {
			p["photos"] = photos
		}
		return p
	}

	require.NoError(t, h.raw.Update(ctx, map[string]interface{}{
		"users/user1/profile": profile("user1", "Alice", "female", "a1.jpg", "a2.jpg", "a3.jpg"),
		"users/user1/meta":    map[string]interface{}{"email": "alice@example.com"},
		"users/user2/profile": profile("user2", "Bob", "male", "b1.jpg"),
		"users/user3/profile": profile("user3", "Carol", "female"),
		"users/user3/photos":  []string{"c1.jpg"},
	}))
}

func (h *harness) get(t *testing.T, path string) interface{} {
	value, err := h.raw.Get(context.Background(), path)
	require.NoError(t, err)
	return value
}

func (h *harness) chat(t *testing.T, ownerID, chatID string) map[string]interface{} {
	value, _ := h.get(t, entity.ChatPath(ownerID, chatID)).(map[string]interface{})
	return value
}

func (h *harness) send(t *testing.T, senderID, recipientID, chatID string, msgType entity.MessageType, text string) *entity.Message {
	msg, err := h.chats.SendMessage(context.Background(), senderID, SendMessageInput{
		ChatID:      chatID,
		RecipientID: recipientID,
		Text:        text,
		Type:        msgType,
	})
	require.NoError(t, err)
	h.dispatcher.Wait()
	return msg
}

// approvedChat runs request and approval between requester and recipient.
func (h *harness) approvedChat(t *testing.T, requesterID, recipientID, chatID string) {
	h.send(t, requesterID, recipientID, chatID, entity.MessageTypeRequest, "")
	h.send(t, recipientID, requesterID, chatID, entity.MessageTypeApproved, "")
}
