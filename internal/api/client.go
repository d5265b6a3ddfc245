// Package api talks to the HiveCouncil service over HTTP. Client opens the
// session event stream and forwards pause and resume requests; it satisfies
// both session.Transport and session.RemoteControl.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/tidwall/gjson"
)

const (
	// DefaultStreamPath is the endpoint that starts a session and streams its
	// events.
	DefaultStreamPath = "/api/session/stream"

	// controlPathFormat is the pause/resume endpoint for a session.
	controlPathFormat = "/api/session/%s/%s"

	// maxErrorBody bounds how much of a rejected response is kept.
	maxErrorBody = 4096
)

// Client is an HTTP client for one HiveCouncil service.
type Client struct {
	baseURL    *url.URL
	streamPath string
	userAgent  string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithStreamPath overrides the streaming endpoint path.
func WithStreamPath(path string) ClientOption {
	return func(c *Client) {
		if path != "" {
			c.streamPath = path
		}
	}
}

// WithHTTPClient sets the underlying HTTP client. The client must not carry
// an overall timeout, since the stream stays open for the whole session.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL:    u,
		streamPath: DefaultStreamPath,
		userAgent:  "hivecouncil",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Open sends the start request and returns the event stream body. A non-2xx
// response is returned as a *errors.TransportError carrying the status code
// and the service's error detail.
func (c *Client) Open(ctx context.Context, cfg council.Config) (io.ReadCloser, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal session config: %w", err)
	}

	req, err := c.newRequest(ctx, c.streamPath, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError("start request failed", err)
	}
	if err := checkStatus(resp, "start request rejected"); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PauseSession asks the service to hold the session between iterations.
func (c *Client) PauseSession(ctx context.Context, sessionID string) error {
	return c.control(ctx, sessionID, "pause")
}

// ResumeSession asks the service to continue a paused session.
func (c *Client) ResumeSession(ctx context.Context, sessionID string) error {
	return c.control(ctx, sessionID, "resume")
}

func (c *Client) control(ctx context.Context, sessionID, action string) error {
	if sessionID == "" {
		return fmt.Errorf("%s: session id is required", action)
	}

	req, err := c.newRequest(ctx, fmt.Sprintf(controlPathFormat, url.PathEscape(sessionID), action), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError(action+" request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, action+" request rejected"); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) newRequest(ctx context.Context, path string, payload []byte) (*http.Request, error) {
	endpoint := c.baseURL.JoinPath(path)

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// checkStatus turns a non-2xx response into a TransportError and closes its
// body.
func checkStatus(resp *http.Response, message string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errors.NewTransportError(message, nil).
		WithStatusCode(resp.StatusCode).
		WithBody(errorDetail(raw))
}

// errorDetail extracts the service's error message from a response body.
// JSON bodies carry it under "detail" or "error"; anything else is returned
// trimmed.
func errorDetail(raw []byte) string {
	if gjson.ValidBytes(raw) {
		for _, path := range []string{"detail", "error", "message"} {
			if v := gjson.GetBytes(raw, path); v.Exists() && v.Type == gjson.String {
				return v.String()
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
