package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/adapter/api"
	"pairchat/internal/adapter/api/handler"
	"pairchat/internal/adapter/api/middleware"
	repo "pairchat/internal/adapter/repository"
	"pairchat/internal/domain/policy"
	"pairchat/internal/infrastructure/firebase"
	"pairchat/internal/infrastructure/realtimedb"
	"pairchat/internal/infrastructure/trigger"
	"pairchat/internal/usecase"
)

type testServer struct {
	e          *echo.Echo
	dispatcher *trigger.Dispatcher
}

func newTestServer(t *testing.T, adminEnabled bool) *testServer {
	raw := realtimedb.NewMemoryStore()
	dispatcher := trigger.NewDispatcher(trigger.Options{MaxAttempts: 2, InitialBackoff: time.Millisecond})
	t.Cleanup(dispatcher.Close)
	store := trigger.NewObservedStore(raw, dispatcher)

	chatRepo := repo.NewTreeChatRepository(store)
	userRepo := repo.NewTreeUserRepository(store)

	gatewayUseCase := usecase.NewGatewayUseCase(store, policy.New(), nil)
	chatUseCase := usecase.NewChatUseCase(gatewayUseCase, chatRepo)
	messageUseCase := usecase.NewMessageUseCase(store, repo.NewTreeMessageRepository(store), chatRepo, userRepo)
	chatSyncUseCase := usecase.NewChatSyncUseCase(store, chatRepo, userRepo, 2)
	usecase.RegisterTriggers(dispatcher, messageUseCase, chatSyncUseCase, nil)

	authClient := firebase.NewFirebaseAuthClient(nil, true)
	userUseCase := usecase.NewUserUseCase(userRepo, authClient)

	handler.Setup(gatewayUseCase, chatUseCase, store, repo.NewMemoryDeadLetterRepository())

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, middleware.NewAuthMiddleware(authClient, userUseCase), middleware.NewAdminMiddleware(adminEnabled))

	return &testServer{e: e, dispatcher: dispatcher}
}

func (s *testServer) do(t *testing.T, method, path, uid, body string) (int, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+firebase.DevTokenPrefix+uid)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	s.dispatcher.Wait()

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func errorCode(body map[string]interface{}) string {
	info, _ := body["error"].(map[string]interface{})
	code, _ := info["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	code, body := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = s.do(t, http.MethodGet, "/health/datastore", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestDatabaseAccessIsPolicyGated(t *testing.T) {
	s := newTestServer(t, false)

	code, body := s.do(t, http.MethodGet, "/v1/db/users/user1/profile", "", "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PERMISSION_DENIED", errorCode(body))

	// First authenticated request onboards the caller.
	code, _ = s.do(t, http.MethodGet, "/v1/db/users/user1/profile", "user1", "")
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/v1/db/users/user1/profile/uid", "user2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user1", body["data"])

	code, body = s.do(t, http.MethodGet, "/v1/db/users/user1/meta", "user1", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPatch, "/v1/db/users/user1/profile", "user1", `{"firstName":"Alice","gender":"female"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "users/user1/profile", body["data"].(map[string]interface{})["path"])

	code, body = s.do(t, http.MethodPatch, "/v1/db/users/user1/profile", "user2", `{"firstName":"Mallory"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/v1/db/users/user1/profile", "user1", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPut, "/v1/db/chats/user1/c1", "user1", `{"status":"approved"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(t, http.MethodPatch, "/v1/db/users/user1/profile", "user1", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
}

func TestChatFlow(t *testing.T) {
	s := newTestServer(t, false)

	code, _ := s.do(t, http.MethodGet, "/v1/chats", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := s.do(t, http.MethodGet, "/v1/chats", "user2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["total"])

	code, body = s.do(t, http.MethodPost, "/v1/chats/c1/messages", "user1", `{"recipientId":"user2","type":"poke"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	code, body = s.do(t, http.MethodPost, "/v1/chats/c1/messages", "user1", `{"recipientId":"user2","type":"request","text":"hi"}`)
	require.Equal(t, http.StatusCreated, code, body)
	requestID := body["data"].(map[string]interface{})["id"].(string)

	code, body = s.do(t, http.MethodGet, "/v1/chats", "user2", "")
	require.Equal(t, http.StatusOK, code)
	page := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), page["total"])
	chat := page["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "user1", chat["recipientId"])
	assert.Equal(t, "pending", chat["status"])
	assert.Equal(t, "hi", chat["lastMsgText"])

	code, _ = s.do(t, http.MethodPut, "/v1/chats/c1/messages/"+requestID+"/read", "user1", "")
	assert.Equal(t, http.StatusForbidden, code, "only the recipient may mark read")

	code, _ = s.do(t, http.MethodPut, "/v1/chats/c1/messages/"+requestID+"/read", "user2", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/v1/db/messages/c1/"+requestID+"/status", "user1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "read", body["data"])

	code, body = s.do(t, http.MethodGet, "/v1/db/chats/user1/c1/lastMsgStatus", "user1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "read", body["data"])

	code, _ = s.do(t, http.MethodGet, "/v1/db/messages/c1", "user3", "")
	assert.Equal(t, http.StatusForbidden, code, "non-participants cannot read the log")
}

func TestAdminRoutes(t *testing.T) {
	code, _ := newTestServer(t, false).do(t, http.MethodGet, "/v1/admin/dead-letters", "user1", "")
	assert.Equal(t, http.StatusNotFound, code)

	s := newTestServer(t, true)
	code, body := s.do(t, http.MethodGet, "/v1/admin/dead-letters", "user1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["total"])

	code, _ = s.do(t, http.MethodGet, "/v1/admin/dead-letters/missing", "user1", "")
	assert.Equal(t, http.StatusNotFound, code)
}
