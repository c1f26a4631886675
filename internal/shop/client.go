// Package shop is the HTTP transport shared by the clients that talk to the
// shop server. Requests carry the browsing session cookie so the server can
// find its per-session state.
package shop

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	BaseURL       string        `envconfig:"SHOP_BASE_URL" default:"http://localhost:8080"`
	SessionCookie string        `envconfig:"SHOP_SESSION_COOKIE" default:"JSESSIONID"`
	Timeout       time.Duration `envconfig:"SHOP_TIMEOUT" default:"10s"`
}

type Client struct {
	baseURL    string
	cookieName string
	sessionID  string
	http       *http.Client
}

// NewClient builds a client for sessionID. A nil httpClient gets one with
// cfg.Timeout.
func NewClient(cfg Config, sessionID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cookieName: cfg.SessionCookie,
		sessionID:  sessionID,
		http:       httpClient,
	}
}

// Do sends one request to path under the base URL. The caller closes the
// response body; status codes are left to the caller.
func (c *Client) Do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("build %s url: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("new %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.sessionID != "" && c.cookieName != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.sessionID})
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
