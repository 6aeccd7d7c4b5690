// Package history implements the REST client for a remote chat-history
// service: list/create/delete chats and fetch/append messages.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/studentbot/backend/internal/model/chat"
)

// Client issues stateless requests against the history service. Calls are not
// retried; read failures degrade to empty results, write failures surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a history client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListChats fetches the chat list for a user. Any failure is swallowed and
// yields an empty list; only read paths get this treatment.
func (c *Client) ListChats(ctx context.Context, userID string) ([]chat.Session, error) {
	endpoint := fmt.Sprintf("%s/api/chats?user_id=%s", c.baseURL, url.QueryEscape(userID))

	var payload struct {
		Chats []chat.Session `json:"chats"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		log.Printf("[history] list chats failed: %v", err)
		return []chat.Session{}, nil
	}
	if payload.Chats == nil {
		return []chat.Session{}, nil
	}
	return payload.Chats, nil
}

// Messages fetches the transcript for a chat. Failures degrade to an empty
// transcript, the same as a chat with no messages.
func (c *Client) Messages(ctx context.Context, chatID string) ([]chat.Message, error) {
	endpoint := fmt.Sprintf("%s/api/messages?chat_id=%s", c.baseURL, url.QueryEscape(chatID))

	var payload struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		log.Printf("[history] fetch messages failed: %v", err)
		return []chat.Message{}, nil
	}
	if payload.Messages == nil {
		return []chat.Message{}, nil
	}
	return payload.Messages, nil
}

// CreateChat persists a new session record. Failure here must stop the caller
// from sending the first message.
func (c *Client) CreateChat(ctx context.Context, chatID, title, userID string) error {
	payload := map[string]string{"chatId": chatID, "title": title, "userId": userID}
	return c.postJSON(ctx, c.baseURL+"/api/chats", payload)
}

// SaveMessage appends one message to a chat.
func (c *Client) SaveMessage(ctx context.Context, chatID, sender, content string) error {
	payload := map[string]string{"chat_id": chatID, "sender": sender, "content": content}
	return c.postJSON(ctx, c.baseURL+"/api/messages", payload)
}

// DeleteChat removes a session and, implicitly, its messages.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/chats/"+url.PathEscape(chatID), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("delete chat: history service returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("history service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("history service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("history service returned status %d", resp.StatusCode)
	}
	return nil
}
