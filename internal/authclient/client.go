package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Validator resolves a bearer token to the authenticated user id.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (int, error)
}

// Client talks to the platform auth service over its internal HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client for the given auth service base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// ValidateToken verifies the token and returns the authenticated user id.
func (c *Client) ValidateToken(ctx context.Context, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/auth/verify", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("auth verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("auth verify: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Valid  bool `json:"valid"`
		UserID int  `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("auth verify: %w", err)
	}
	if !body.Valid || body.UserID == 0 {
		return 0, errors.New("invalid token")
	}
	return body.UserID, nil
}
