package serverchan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	drepo "IPOWatch/internal/domain/repository"
	xhttp "IPOWatch/pkg/http"
)

const DefaultBaseURL = "https://sctapi.ftqq.com"

// ErrNoSendKey is returned by Push when no key is configured.
var ErrNoSendKey = errors.New("serverchan: missing send key")

// Client pushes messages through Server酱 Turbo.
type Client struct {
	sendKey string
	baseURL string
	http    *xhttp.Client
}

// New creates a pusher for sendKey. The key is trimmed; base falls back to
// DefaultBaseURL.
func New(sendKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		sendKey: strings.TrimSpace(sendKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("ipowatch-serverchan/1.0")),
	}
}

var _ drepo.Pusher = (*Client)(nil)

// Configured reports whether a send key is present.
func (c *Client) Configured() bool {
	return c.sendKey != ""
}

// Push sends title/desp; any 2xx response counts as delivered.
func (c *Client) Push(ctx context.Context, title, body string) error {
	if !c.Configured() {
		return ErrNoSendKey
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s.send", c.baseURL, c.sendKey),
		QueryParams: map[string][]string{
			"title": {title},
			"desp":  {body},
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("serverchan push: %w", err)
	}
	return nil
}
