package spotify

import (
	"context"
	"fmt"
	"net/url"
)

// FetchAlbumImage returns the largest album cover of a track, or "" when the
// album has no images.
func (c *Client) FetchAlbumImage(ctx context.Context, trackID string) (string, error) {
	var tr spotifyTrack
	if err := c.getJSON(ctx, fmt.Sprintf("%s/tracks/%s", c.baseURL, url.PathEscape(trackID)), "track "+trackID, &tr); err != nil {
		return "", err
	}
	return coverURL(tr.Album), nil
}
