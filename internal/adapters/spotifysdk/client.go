// Package spotifysdk implements the Spotify ports on top of the
// github.com/zmb3/spotify SDK.
package spotifysdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

const defaultMaxExtraPages = 10

// Client adapts *spotify.Client to ports.SpotifyProvider.
type Client struct {
	api           *spotify.Client
	market        string
	maxExtraPages int
	logger        *slog.Logger
}

var _ ports.SpotifyProvider = (*Client)(nil)

type Option func(*Client)

func WithMarket(code string) Option {
	return func(c *Client) { c.market = code }
}

func WithMaxExtraPages(n int) Option {
	return func(c *Client) { c.maxExtraPages = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client. An empty baseURL keeps the SDK default; retry turns on
// the SDK's own 429 handling.
func New(httpClient *http.Client, baseURL string, retry bool, opts ...Option) *Client {
	sdkOpts := []spotify.ClientOption{spotify.WithRetry(retry)}
	if baseURL != "" {
		sdkOpts = append(sdkOpts, spotify.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	c := &Client{
		api:           spotify.New(httpClient, sdkOpts...),
		maxExtraPages: defaultMaxExtraPages,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns a client-credentials http.Client against the Spotify
// accounts service, or tokenURL when set.
func NewHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string, timeout time.Duration) *http.Client {
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	cfg := clientcredentials.Config{ClientID: clientID, ClientSecret: clientSecret, TokenURL: tokenURL}
	hc := cfg.Client(ctx)
	hc.Timeout = timeout
	return hc
}

func (c *Client) requestOptions(extra ...spotify.RequestOption) []spotify.RequestOption {
	if c.market != "" {
		extra = append(extra, spotify.Market(c.market))
	}
	return extra
}

func (c *Client) FetchPlaylist(ctx context.Context, playlistID string) (domain.Playlist, error) {
	if playlistID == "" {
		return domain.Playlist{}, fmt.Errorf("spotifysdk adapter: playlist id is required")
	}

	fp, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID), c.requestOptions()...)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("spotifysdk adapter: get playlist %s: %w", playlistID, mapError("playlist", err))
	}

	pl := domain.Playlist{ID: playlistID, Name: fp.Name, SnapshotID: fp.SnapshotID}
	page := &fp.Tracks
	appendPage(&pl, page.Tracks)

	extra := 0
	for ; extra < c.maxExtraPages; extra++ {
		err := c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return pl, nil
		}
		if err != nil {
			return domain.Playlist{}, fmt.Errorf("spotifysdk adapter: page %d of %s: %w", extra+2, playlistID, mapError("playlist tracks", err))
		}
		appendPage(&pl, page.Tracks)
	}
	if page.Next != "" {
		c.logger.Warn("spotifysdk adapter: playlist truncated at page cap", "playlist", playlistID, "pages", extra+1, "tracks", len(pl.Tracks))
	}
	return pl, nil
}

func (c *Client) FetchSnapshotID(ctx context.Context, playlistID string) (string, error) {
	fp, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID), spotify.Fields("snapshot_id"))
	if err != nil {
		return "", fmt.Errorf("spotifysdk adapter: get snapshot %s: %w", playlistID, mapError("playlist snapshot", err))
	}
	return fp.SnapshotID, nil
}

// FetchUsernames stops at the first failed profile lookup.
func (c *Client) FetchUsernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if _, done := names[id]; done || id == "" {
			continue
		}
		u, err := c.api.GetUsersPublicProfile(ctx, spotify.ID(id))
		if err != nil {
			return nil, fmt.Errorf("spotifysdk adapter: get user %s: %w", id, mapError("user "+id, err))
		}
		names[id] = u.DisplayName
		if u.DisplayName == "" {
			names[id] = id
		}
	}
	return names, nil
}

func (c *Client) FetchAlbumImage(ctx context.Context, trackID string) (string, error) {
	t, err := c.api.GetTrack(ctx, spotify.ID(trackID), c.requestOptions()...)
	if err != nil {
		return "", fmt.Errorf("spotifysdk adapter: get track %s: %w", trackID, mapError("track", err))
	}
	if len(t.Album.Images) == 0 {
		return "", nil
	}
	return t.Album.Images[0].URL, nil
}

func appendPage(pl *domain.Playlist, items []spotify.PlaylistTrack) {
	for _, it := range items {
		if it.IsLocal || it.Track.ID == "" {
			continue
		}
		artists := make([]string, 0, len(it.Track.Artists))
		for _, a := range it.Track.Artists {
			artists = append(artists, a.Name)
		}
		_ = pl.AddTrack(domain.Track{
			ID:          string(it.Track.ID),
			URI:         string(it.Track.URI),
			Title:       it.Track.Name,
			Artists:     artists,
			Album:       it.Track.Album.Name,
			AddedBy:     it.AddedBy.ID,
			ReleaseDate: it.Track.Album.ReleaseDate,
			Popularity:  int(it.Track.Popularity),
		})
	}
}

// mapError turns SDK API errors into domain.FetchError so callers can match
// them with errors.Is(err, domain.ErrFetchFailed).
func mapError(resource string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return domain.FetchError{Resource: resource, Status: apiErr.Status}
	}
	return err
}
