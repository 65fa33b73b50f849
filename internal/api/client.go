// Package api is the client for the chat backend's REST surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatlink/internal/auth"
	"chatlink/internal/config"
)

// ErrUnauthorized is returned for 401 responses. Callers treat it as a hard
// auth failure (re-login required), distinct from network errors.
var ErrUnauthorized = errors.New("unauthorized")

// Client is a chat backend API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokens *auth.Store
}

func NewClient(cnf *config.Config, tokens *auth.Store) *Client {
	timeout := time.Duration(cnf.API.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		BaseURL:    cnf.API.BaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// ConversationSummary is one row of a user's conversation listing.
type ConversationSummary struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	OwnerID        string `json:"owner_id"`
	Role           string `json:"role"`
	JoinedAt       string `json:"joined_at"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type ConversationDetail struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// MessageRow is a persisted message as the backend returns it. Note there
// is no display name; only socket frames carry one.
type MessageRow struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	SenderID       string `json:"sender_id"`
	ConversationID string `json:"conversation_id"`
	SentFromClient string `json:"sent_from_client"`
	SentFromServer string `json:"sent_from_server"`
}

type conversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	StatusCode    int                   `json:"status_code"`
}

// The backend returns the conversation detail under a "messages" key.
type conversationResponse struct {
	Messages ConversationDetail `json:"messages"`
}

type messagesResponse struct {
	Messages []MessageRow `json:"messages"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login exchanges credentials for tokens and stores them.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Tokens, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("no response from server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("authentication failed: %s", msg)
	}

	var tokens auth.Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	if err := c.tokens.Set(&tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Conversations lists the conversations the user is a member of.
func (c *Client) Conversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	var out conversationsResponse
	err := c.get(ctx, fmt.Sprintf("/api/user/%s/conversations", userID), &out)
	if err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// Conversation fetches one conversation's details.
func (c *Client) Conversation(ctx context.Context, conversationID string) (*ConversationDetail, error) {
	var out conversationResponse
	err := c.get(ctx, fmt.Sprintf("/api/conversation/%s", conversationID), &out)
	if err != nil {
		return nil, err
	}
	return &out.Messages, nil
}

// Messages fetches a conversation's message history. Row order is not
// guaranteed; callers sort by timestamp.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]MessageRow, error) {
	var out messagesResponse
	err := c.get(ctx, fmt.Sprintf("/api/conversation/%s/messages", conversationID), &out)
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if access := c.tokens.Access(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Clear()
		return fmt.Errorf("GET %s: %w", path, ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
