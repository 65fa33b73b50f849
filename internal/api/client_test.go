package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatlink/internal/auth"
	"chatlink/internal/config"
)

func newTestServer(t *testing.T) (*httptest.Server, *mux.Router) {
	t.Helper()
	r := mux.NewRouter()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, r
}

func newTestClient(t *testing.T, baseURL string) (*Client, *auth.Store) {
	t.Helper()
	tokens := auth.NewStore(t.TempDir())
	cnf := &config.Config{API: config.APIConfig{BaseURL: baseURL, TimeoutSeconds: 5}}
	return NewClient(cnf, tokens), tokens
}

func TestClient_Login(t *testing.T) {
	srv, r := newTestServer(t)
	r.HandleFunc("/auth/token", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))

		if body.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-abc",
			"refresh_token": "refresh-def",
		})
	}).Methods(http.MethodPost)

	client, tokens := newTestClient(t, srv.URL)

	got, err := client.Login(context.Background(), "a@b.c", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "access-abc", got.AccessToken)
	assert.Equal(t, "access-abc", tokens.Access())

	_, err = client.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestClient_Conversations(t *testing.T) {
	srv, r := newTestServer(t)
	r.HandleFunc("/api/user/{userId}/conversations", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "user-123", mux.Vars(req)["userId"])
		assert.Equal(t, "Bearer token-1", req.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status_code": 200,
			"conversations": []map[string]string{
				{"id": "conv-1", "name": "general", "owner_id": "user-123"},
				{"id": "conv-2", "name": "random"},
			},
		})
	}).Methods(http.MethodGet)

	client, tokens := newTestClient(t, srv.URL)
	require.NoError(t, tokens.Set(&auth.Tokens{AccessToken: "token-1"}))

	convs, err := client.Conversations(context.Background(), "user-123")
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "general", convs[0].Name)
}

func TestClient_Conversation_DetailUnderMessagesKey(t *testing.T) {
	srv, r := newTestServer(t)
	r.HandleFunc("/api/conversation/{id}", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": map[string]string{
				"id":          mux.Vars(req)["id"],
				"name":        "general",
				"description": "the general channel",
				"owner_id":    "user-123",
			},
		})
	}).Methods(http.MethodGet)

	client, _ := newTestClient(t, srv.URL)

	conv, err := client.Conversation(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "general", conv.Name)
	assert.Equal(t, "the general channel", conv.Description)
}

func TestClient_Messages(t *testing.T) {
	srv, r := newTestServer(t)
	r.HandleFunc("/api/conversation/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{
				{
					"id": "m1", "content": "hello", "sender_id": "user-456",
					"conversation_id": "conv-1",
					"sent_from_client": "2025-06-01T12:00:00Z",
					"sent_from_server": "2025-06-01T12:00:01Z",
				},
			},
		})
	}).Methods(http.MethodGet)

	client, _ := newTestClient(t, srv.URL)

	rows, err := client.Messages(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "m1", rows[0].ID)
	assert.Equal(t, "user-456", rows[0].SenderID)
}

func TestClient_UnauthorizedSentinel(t *testing.T) {
	srv, r := newTestServer(t)
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, tokens := newTestClient(t, srv.URL)
	require.NoError(t, tokens.Set(&auth.Tokens{AccessToken: "stale"}))

	_, err := client.Messages(context.Background(), "conv-1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// 401 drops the stored token, mirroring the forced re-login flow.
	assert.Empty(t, tokens.Access())
}

func TestClient_NetworkErrorIsNotUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, "http://127.0.0.1:1") // nothing listens here

	_, err := client.Messages(context.Background(), "conv-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
