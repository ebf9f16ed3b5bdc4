// Package spotify is a hand-written client for the Spotify Web API covering
// playlists, user profiles and track artwork.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

// TokenURL is the Spotify accounts endpoint for the client-credentials grant.
const TokenURL = "https://accounts.spotify.com/api/token"

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	maxRetries    int
	baseBackoff   time.Duration
	maxExtraPages int
	logger        *slog.Logger
}

// compile-time interface assertion
var _ ports.SpotifyProvider = (*Client)(nil)

// Option tunes a Client.
type Option func(*Client)

// WithRetries enables retrying 429 and 5xx answers. attempts counts the first
// request, so 1 disables retries.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = attempts
		c.baseBackoff = backoff
	}
}

// WithMaxExtraPages caps how many pages are read after the first one.
func WithMaxExtraPages(n int) Option {
	return func(c *Client) { c.maxExtraPages = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient constructs a new Spotify client. httpClient is expected to attach
// the bearer token, see NewAuthenticatedHTTPClient.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		maxRetries:    1,
		baseBackoff:   time.Duration(defaultBackoffMs) * time.Millisecond,
		maxExtraPages: defaultMaxExtraPages,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewAuthenticatedHTTPClient returns an http.Client that fetches and renews an
// app token with the client-credentials grant. An empty tokenURL uses TokenURL.
func NewAuthenticatedHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string, timeout time.Duration) *http.Client {
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	hc := cfg.Client(ctx)
	hc.Timeout = timeout
	return hc
}

// getJSON fetches url and decodes a 200 answer into out. Other statuses
// surface as domain.FetchError for resource.
func (c *Client) getJSON(ctx context.Context, url, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: create %s request: %w", resource, err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return fmt.Errorf("spotify adapter: %s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("spotify adapter: %w", domain.FetchError{Resource: resource, Status: resp.StatusCode})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: decode %s: %w", resource, err)
	}
	return nil
}
