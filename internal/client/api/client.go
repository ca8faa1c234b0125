// Package api implements the HTTP client for the auth server endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/authkeep/authkeep/internal/client/config"
)

// APIError carries the status code and server-provided message of a failed
// request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	base  string
	appID string
	http  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		base:  cfg.ServerURL,
		appID: cfg.AppID,
		http:  &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// SignInResult is the decoded sign-in response. RefreshToken is empty when
// the session was not remembered.
type SignInResult struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	RefreshExpires int64  `json:"refresh_expires"`
}

func (c *Client) SignUp(ctx context.Context, email, name, password string) error {
	body := map[string]any{"email": email, "name": name, "password": password}
	return c.post(ctx, "/api/signup", body, nil, nil)
}

func (c *Client) SignIn(ctx context.Context, email, password string, remember bool) (*SignInResult, error) {
	body := map[string]any{
		"email": email, "password": password,
		"app_id": c.appID, "remember": remember,
	}
	result := &SignInResult{}
	if err := c.post(ctx, "/api/signin", body, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Refresh(ctx context.Context, accessToken, refreshToken string) (string, error) {
	body := map[string]any{"refresh_token": refreshToken, "app_id": c.appID}
	headers := map[string]string{"Authorization": "Bearer " + accessToken}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post(ctx, "/api/token/refresh", body, headers, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *Client) VerifyAccount(ctx context.Context, token string) error {
	return c.post(ctx, "/api/verify-account", map[string]any{"token": token}, nil, nil)
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.post(ctx, "/api/resend-verification", map[string]any{"email": email}, nil, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/api/reset-password/request", map[string]any{"email": email}, nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]any{"token": token, "password": password}
	return c.post(ctx, "/api/reset-password", body, nil, nil)
}

// Ping probes server reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "ping failed"}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any, headers map[string]string, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
