package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/studentalliance/catalog-gateway/internal/config"
)

// AuthClient talks to the remote auth service. The gateway performs no
// cryptography or token verification of its own; it forwards credentials
// and persists what comes back.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(cfg config.Remote) *AuthClient {
	return &AuthClient{
		baseURL:    strings.TrimSuffix(cfg.AuthBaseURL, "/"),
		httpClient: newHTTPClient(cfg),
	}
}

// LoginResult carries the session token and the user object exactly as the
// auth service returned it.
type LoginResult struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var result LoginResult
	if err := c.post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result); err != nil {
		return LoginResult{}, err
	}

	return result, nil
}

func (c *AuthClient) Signup(ctx context.Context, name, email, password string) (json.RawMessage, error) {
	var created json.RawMessage
	if err := c.post(ctx, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &created); err != nil {
		return nil, err
	}

	return created, nil
}

func (c *AuthClient) UpdatePassword(ctx context.Context, email, password string) error {
	return c.post(ctx, "/api/auth/update-password", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
}

func (c *AuthClient) post(ctx context.Context, path string, body map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return responseErr(resp)
	}

	if out == nil {
		return nil
	}

	return decodeJSON(resp, out)
}
