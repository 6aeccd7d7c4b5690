// Package auth wraps the external identity provider (a gotrue-style REST API):
// password sign-in, signup, OAuth redirect issuance and token parsing.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/studentbot/backend/internal/config"
	"github.com/studentbot/backend/internal/model/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignupRejected     = errors.New("signup rejected by identity provider")
)

// Session is the identity provider's answer to a successful sign-in.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         SessionUser `json:"user"`
}

// SessionUser carries the provider-side account fields we consume.
type SessionUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// Profile converts the provider account into the local profile record.
func (u SessionUser) Profile() user.Profile {
	name, _ := u.Metadata["full_name"].(string)
	if name == "" {
		name = u.Email
	}
	avatar, _ := u.Metadata["avatar_url"].(string)
	return user.Profile{
		ID:        u.ID,
		Name:      name,
		Email:     u.Email,
		AvatarURL: avatar,
		CreatedAt: time.Now().UTC(),
	}
}

// Client talks to the identity provider over REST.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient builds a Client from the auth configuration.
func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		anonKey:    cfg.AnonKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SignInWithPassword exchanges email/password credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	session := &Session{}
	status, err := c.post(ctx, "/auth/v1/token?grant_type=password", payload, session)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", status)
	}
	return session, nil
}

// SignUp registers a new account. The full name lands in user metadata, the
// same place the OAuth flow stores it.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName, "email": email},
	}
	session := &Session{}
	status, err := c.post(ctx, "/auth/v1/signup", payload, session)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, ErrSignupRejected
	}
	return session, nil
}

// GoogleAuthURL builds the OAuth redirect entry point for the Google provider.
func (c *Client) GoogleAuthURL(redirectTo string) string {
	params := url.Values{}
	params.Set("provider", "google")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	if redirectTo != "" {
		params.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + params.Encode()
}

// SignOut revokes the supplied access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sign out: identity provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode identity response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
