package ports

import (
	"context"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// PlaylistSource fetches playlists from the streaming service.
type PlaylistSource interface {
	// FetchPlaylist returns the playlist with every page of tracks in source
	// order. Non-2xx answers surface as domain.FetchError.
	FetchPlaylist(ctx context.Context, playlistID string) (domain.Playlist, error)
	// FetchSnapshotID returns the current revision id without loading tracks.
	FetchSnapshotID(ctx context.Context, playlistID string) (string, error)
}

// UserResolver maps contributor ids to display names. A single failed lookup
// fails the whole batch.
type UserResolver interface {
	FetchUsernames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// ArtworkResolver returns the album cover URL of a track.
type ArtworkResolver interface {
	FetchAlbumImage(ctx context.Context, trackID string) (string, error)
}

// SpotifyProvider is implemented by both Spotify drivers.
type SpotifyProvider interface {
	PlaylistSource
	UserResolver
	ArtworkResolver
}
