package spotify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

const playlistFields = "id,name,snapshot_id,tracks(next,total,items(added_by.id,track(id,uri,name,popularity,is_local,artists(id,name),album(name,release_date,images))))"

// FetchPlaylist loads a playlist and follows the tracks.next links until they
// run out or maxExtraPages additional pages were read. Any non-2xx answer
// fails the whole fetch.
func (c *Client) FetchPlaylist(ctx context.Context, playlistID string) (domain.Playlist, error) {
	if playlistID == "" {
		return domain.Playlist{}, fmt.Errorf("spotify adapter: playlist id is required")
	}

	u := fmt.Sprintf("%s/playlists/%s?fields=%s", c.baseURL, url.PathEscape(playlistID), url.QueryEscape(playlistFields))
	var sp spotifyPlaylist
	if err := c.getJSON(ctx, u, "playlist", &sp); err != nil {
		return domain.Playlist{}, err
	}

	pl, err := domain.NewPlaylist(sp.ID, sp.Name, sp.SnapshotID)
	if err != nil {
		pl = &domain.Playlist{ID: playlistID, Name: sp.Name, SnapshotID: sp.SnapshotID}
	}
	appendItems(pl, sp.Tracks.Items)

	next := sp.Tracks.Next
	for page := 0; next != "" && page < c.maxExtraPages; page++ {
		var tp spotifyTrackPage
		if err := c.getJSON(ctx, next, "playlist tracks", &tp); err != nil {
			return domain.Playlist{}, fmt.Errorf("spotify adapter: page %d of %s: %w", page+2, playlistID, err)
		}
		appendItems(pl, tp.Items)
		next = tp.Next
	}
	if next != "" {
		c.logger.Warn("spotify adapter: playlist truncated at page cap", "playlist", playlistID, "pages", c.maxExtraPages+1, "tracks", len(pl.Tracks))
	}

	return *pl, nil
}

// FetchSnapshotID returns the playlist's current snapshot id.
func (c *Client) FetchSnapshotID(ctx context.Context, playlistID string) (string, error) {
	u := fmt.Sprintf("%s/playlists/%s?fields=snapshot_id", c.baseURL, url.PathEscape(playlistID))
	var s spotifySnapshot
	if err := c.getJSON(ctx, u, "playlist snapshot", &s); err != nil {
		return "", err
	}
	return s.SnapshotID, nil
}
