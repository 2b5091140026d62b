// Package client is the Go SDK for the StorePulse API. It attaches bearer
// tokens to outbound calls and transparently recovers from an expired access
// token: on a 401 it refreshes the token pair once — deduplicated across
// concurrent callers — and retries the original request exactly once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when no usable refresh token remains. The
// caller must re-authenticate; stored tokens have already been cleared.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is the uniform error for any non-2xx response or transport
// failure. Status is the HTTP status code, or 0 for a pure network failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client is the resilient HTTP gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore

	// refreshGroup collapses concurrent refresh attempts into one network
	// call; every caller that hits a 401 while a refresh is in flight awaits
	// the same result.
	refreshGroup singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore replaces the default in-memory token store.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

// New creates a Client for the API at baseURL (no trailing slash).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		store:      NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenStore exposes the client's token storage, mainly so callers can check
// whether a session exists.
func (c *Client) TokenStore() TokenStore { return c.store }

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH request with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request and decodes the JSON response into out.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	resp, err := c.issue(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		if err := c.refreshTokens(ctx); err != nil {
			return ErrSessionExpired
		}
		// Retry the original request once with the fresh access token.
		// Whatever happens now is final — no second refresh.
		resp, err = c.issue(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

// issue builds and sends a single HTTP request with the current bearer token.
func (c *Client) issue(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var bodyReader *bytes.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, &APIError{Status: 0, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if t := c.store.Tokens(); t != nil && t.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.AccessToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts, DNS failures and the like all collapse into status 0.
		return nil, &APIError{Status: 0, Message: err.Error()}
	}
	return resp, nil
}

// refreshTokens exchanges the stored refresh token for a new pair. Concurrent
// callers share one in-flight exchange. On any failure the stored tokens are
// cleared so subsequent calls fail fast without a network round trip.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		t := c.store.Tokens()
		if t == nil || t.RefreshToken == "" {
			c.store.ClearTokens()
			return nil, ErrSessionExpired
		}

		payload, err := json.Marshal(map[string]string{"refresh_token": t.RefreshToken})
		if err != nil {
			c.store.ClearTokens()
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/auth/refresh", bytes.NewReader(payload))
		if err != nil {
			c.store.ClearTokens()
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.store.ClearTokens()
			return nil, err
		}
		defer resp.Body.Close()

		var envelope struct {
			Success bool       `json:"success"`
			Tokens  *TokenPair `json:"tokens"`
		}
		if resp.StatusCode != http.StatusOK ||
			json.NewDecoder(resp.Body).Decode(&envelope) != nil ||
			!envelope.Success || envelope.Tokens == nil {
			c.store.ClearTokens()
			return nil, ErrSessionExpired
		}

		c.store.SetTokens(envelope.Tokens)
		return nil, nil
	})
	return err
}

func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			if envelope.Error != "" {
				msg = envelope.Error
			} else if envelope.Message != "" {
				msg = envelope.Message
			}
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		drain(resp)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: 0, Message: "malformed response body: " + err.Error()}
	}
	return nil
}

func drain(resp *http.Response) {
	_ = resp.Body.Close()
}
