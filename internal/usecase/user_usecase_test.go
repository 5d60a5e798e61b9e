package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	repo "pairchat/internal/adapter/repository"
	"pairchat/internal/domain/entity"
	"pairchat/internal/infrastructure/realtimedb"
)

type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) LookupUser(ctx context.Context, uid string) (*entity.Identity, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Identity), args.Error(1)
}

func TestEnsureUserCreatesProfileOnce(t *testing.T) {
	store := realtimedb.NewMemoryStore()
	identity := new(mockIdentityProvider)
	identity.On("LookupUser", mock.Anything, "user9").
		Return(&entity.Identity{UID: "user9", DisplayName: "Dana Van Dyke", Email: "dana@example.com"}, nil).
		Once()

	uc := NewUserUseCase(repo.NewTreeUserRepository(store), identity)
	ctx := context.Background()

	require.NoError(t, uc.EnsureUser(ctx, "user9"))
	require.NoError(t, uc.EnsureUser(ctx, "user9"))

	profile, err := store.Get(ctx, "users/user9/profile")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"uid":       "user9",
		"firstName": "Dana",
		"lastName":  "Van Dyke",
		"about":     "",
		"interests": "",
	}, profile)

	email, err := store.Get(ctx, "users/user9/meta/email")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", email)

	identity.AssertExpectations(t)
}

func TestEnsureUserKeepsExistingProfile(t *testing.T) {
	store := realtimedb.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "users/user1/profile", map[string]interface{}{"uid": "user1", "firstName": "Alice"}))

	identity := new(mockIdentityProvider)
	uc := NewUserUseCase(repo.NewTreeUserRepository(store), identity)

	require.NoError(t, uc.EnsureUser(ctx, "user1"))

	name, err := store.Get(ctx, "users/user1/profile/firstName")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	identity.AssertNotCalled(t, "LookupUser", mock.Anything, mock.Anything)
}

func TestEnsureUserIdentityFailure(t *testing.T) {
	store := realtimedb.NewMemoryStore()
	identity := new(mockIdentityProvider)
	identity.On("LookupUser", mock.Anything, "user9").Return(nil, fmt.Errorf("identity down")).Twice()

	uc := NewUserUseCase(repo.NewTreeUserRepository(store), identity)
	ctx := context.Background()

	assert.Error(t, uc.EnsureUser(ctx, "user9"))
	assert.Error(t, uc.EnsureUser(ctx, "user9"), "failures are not cached")

	value, err := store.Get(ctx, "users/user9")
	require.NoError(t, err)
	assert.Nil(t, value)
	identity.AssertExpectations(t)
}
