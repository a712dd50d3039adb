package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrSellerCloudAuth = errors.New("sellercloud authentication failed")

// SellerCloudClient reads orders from the SellerCloud REST API. The bearer
// token is requested on first use and reused for the rest of the run.
type SellerCloudClient struct {
	baseURL  string
	username string
	password string
	client   *http.Client

	mu    sync.Mutex
	token string
}

// OrderResponse is the raw outcome of GET /Orders/{id}. Body is nil unless
// the call succeeded and returned a JSON object.
type OrderResponse struct {
	StatusCode int
	Body       map[string]any
	Text       string
}

func (r *OrderResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewSellerCloudClient(baseURL, username, password string, timeout time.Duration) *SellerCloudClient {
	return &SellerCloudClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *SellerCloudClient) GetOrder(ctx context.Context, orderID string) (*OrderResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/Orders/%s", c.baseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	out := &OrderResponse{StatusCode: resp.StatusCode, Text: string(raw)}
	switch {
	case out.OK():
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var body map[string]any
		if err := dec.Decode(&body); err != nil {
			slog.Warn("sellercloud order body is not a JSON object", "order_id", orderID, "error", err)
		} else {
			out.Body = body
		}
	case resp.StatusCode == http.StatusUnauthorized:
		c.resetToken(token)
	}
	return out, nil
}

type tokenRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *SellerCloudClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	payload, err := json.Marshal(tokenRequest{Username: c.username, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status %d, body: %s", ErrSellerCloudAuth, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrSellerCloudAuth)
	}
	c.token = tr.AccessToken
	return c.token, nil
}

// resetToken drops a token the API rejected so the next call logs in again.
func (c *SellerCloudClient) resetToken(rejected string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == rejected {
		c.token = ""
	}
}
