package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devdialogue/backend/internal/api/handler"
	"devdialogue/backend/internal/auth"
	"devdialogue/backend/internal/chathub"
	"devdialogue/backend/internal/models"
	"devdialogue/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// restStub backs the account and history endpoints with an in-memory map.
type restStub struct {
	storage.Storage
	users   map[string]*models.User
	history []models.PrivateMessage
}

func newRestStub() *restStub {
	return &restStub{users: make(map[string]*models.User)}
}

func (s *restStub) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	s.users[user.Email] = user
	return nil
}

func (s *restStub) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, assert.AnError
	}
	return user, nil
}

func (s *restStub) GetPrivateHistory(ctx context.Context, userID, peerID string) ([]models.PrivateMessage, error) {
	return s.history, nil
}

func newRestServer(t *testing.T, store *restStub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("test-secret", "devdialogue-test", time.Hour)
	registry := chathub.NewRegistry()
	chatHub := chathub.NewHub("chat", registry, nil, chathub.RoomDispatcher{})
	groupHub := chathub.NewHub("groups", registry, nil, chathub.RoomDispatcher{})
	go chatHub.Run()
	go groupHub.Run()

	h := handler.NewHandler(store, tokens,
		chathub.NewChatNamespace(chatHub, store),
		chathub.NewGroupNamespace(groupHub, store),
	)

	r := gin.New()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestRegisterThenLogin(t *testing.T) {
	store := newRestStub()
	srv := newRestServer(t, store)

	resp := postJSON(t, srv.URL+"/api/v1/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	assert.NotEmpty(t, registered.Token)

	login := postJSON(t, srv.URL+"/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	defer login.Body.Close()
	assert.Equal(t, http.StatusOK, login.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newRestStub()
	srv := newRestServer(t, store)

	resp := postJSON(t, srv.URL+"/api/v1/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	resp.Body.Close()

	login := postJSON(t, srv.URL+"/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "battery-staple",
	})
	defer login.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, login.StatusCode)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	srv := newRestServer(t, newRestStub())

	resp, err := http.Get(srv.URL + "/api/v1/messages/u2")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetPrivateHistory_Authorized(t *testing.T) {
	store := newRestStub()
	store.history = []models.PrivateMessage{
		{SenderID: "u1", RecipientID: "u2", Content: "first"},
		{SenderID: "u2", RecipientID: "u1", Content: "second"},
	}
	srv := newRestServer(t, store)

	tokens := auth.NewTokenService("test-secret", "devdialogue-test", time.Hour)
	token, err := tokens.Generate(auth.Identity{ID: "u1", Name: "Alice"})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/messages/u2", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                    `json:"success"`
		Data    []models.PrivateMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 2)
}
