package spotify

import (
	"context"
	"fmt"
	"net/url"
)

// FetchUsernames resolves display names for userIDs. The first failed lookup
// aborts the batch. Users without a display name map to their id.
func (c *Client) FetchUsernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if _, done := names[id]; done || id == "" {
			continue
		}
		var u spotifyUser
		if err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(id)), "user "+id, &u); err != nil {
			return nil, err
		}
		if u.DisplayName == "" {
			names[id] = id
			continue
		}
		names[id] = u.DisplayName
	}
	return names, nil
}
