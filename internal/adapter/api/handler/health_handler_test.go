package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"pairchat/internal/infrastructure/realtimedb"
)

type unreachableStore struct {
	*realtimedb.MemoryStore
}

func (unreachableStore) Get(ctx context.Context, path string) (interface{}, error) {
	return nil, fmt.Errorf("connection refused")
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler(realtimedb.NewMemoryStore())

	if assert.NoError(t, h.CheckHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}

func TestCheckDatastore(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/datastore", nil), rec)
	if assert.NoError(t, NewHealthHandler(realtimedb.NewMemoryStore()).CheckDatastore(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/health/datastore", nil), rec)
	if assert.NoError(t, NewHealthHandler(unreachableStore{realtimedb.NewMemoryStore()}).CheckDatastore(c)) {
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "connection refused")
	}
}

func TestActorFrom(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Nil(t, actorFrom(c))

	c.Set("uid", "user1")
	if actor := actorFrom(c); assert.NotNil(t, actor) {
		assert.Equal(t, "user1", actor.ID)
	}
}
