// Package vocalbridge fetches voice session credentials from the VocalBridge API.
package vocalbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/learnaloud/internal/apistats"
)

const (
	DefaultBaseURL = "http://vocalbridgeai.com/api/v1"
	statsName      = "vocalbridge"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("vocalbridge api key not configured")

// Client calls the VocalBridge token and agent endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	stats      *apistats.Registry
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(apiKey, baseURL string, stats *apistats.Registry) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		stats:      stats,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Token requests a session token for participant and returns the response
// body unchanged.
func (c *Client) Token(ctx context.Context, participant string) (json.RawMessage, error) {
	if participant == "" {
		participant = "student"
	}
	body, err := json.Marshal(map[string]string{"participant_name": participant})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/token", body)
}

// Agent returns the configured agent's description unchanged.
func (c *Client) Agent(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/agent", nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (raw json.RawMessage, err error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	defer func() { c.stats.Observe(statsName, start, err) }()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vocalbridge %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vocalbridge %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("vocalbridge %s: response is not JSON", path)
	}
	return json.RawMessage(data), nil
}
