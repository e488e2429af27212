// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/model"
)

const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	userAgent = "agentdesk/1.0"
)

var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 5,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// Client talks to the agent service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *logrus.Entry

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: sharedTransport, Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     logging.For("api"),
	}
}

// WithToken sets the bearer token.
func (c *Client) WithToken(token string) *Client {
	c.SetToken(token)
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.http.Timeout = timeout
	}
	return c
}

// WithRateLimit paces requests to rps per second. Zero disables pacing.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
		return c
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Login exchanges credentials for an access token. The client keeps the
// token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("login response carried no access token")
	}
	c.SetToken(resp.AccessToken)
	return resp.AccessToken, nil
}

// ListAgents returns every agent visible to the user.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := c.do(ctx, http.MethodGet, "/api/agents", nil, &agents, true); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent returns one agent with all its revisions.
func (c *Client) GetAgent(ctx context.Context, id string) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodGet, "/api/agents/"+url.PathEscape(id), nil, &agent, true); err != nil {
		return nil, err
	}
	if agent.ID == "" {
		agent.ID = id
	}
	return &agent, nil
}

// Welcome returns the introductory text of the agent's first revision.
func (c *Client) Welcome(ctx context.Context, id string) (string, error) {
	agent, err := c.GetAgent(ctx, id)
	if err != nil {
		return "", err
	}
	if len(agent.Revisions) == 0 {
		return "", fmt.Errorf("agent %s has no revisions", id)
	}
	return agent.IntroductoryText(), nil
}

// Chat sends the conversation and returns the agent's reply. A reply
// without text yields NoResponseText.
func (c *Client) Chat(ctx context.Context, agentID string, messages []model.Message) (string, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", ChatRequest{AgentID: agentID, Messages: messages}, &resp, true); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return NoResponseText, nil
	}
	return resp.Response, nil
}

// Ingest uploads extracted file text under key.
func (c *Client) Ingest(ctx context.Context, key, value string) error {
	return c.do(ctx, http.MethodPost, "/api/alignment-data", IngestRequest{Key: key, Value: value}, nil, true)
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}
	if auth && c.Token() == "" {
		return ErrUnauthorized
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, auth)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("request")

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &HTTPError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, auth bool) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.Token())
	}
}

// readResponse reads the body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
