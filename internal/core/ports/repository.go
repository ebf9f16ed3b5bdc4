package ports

import (
	"context"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

// PlaylistRepository is the local snapshot cache. GetByID returns
// domain.ErrNotFound for unknown playlists.
type PlaylistRepository interface {
	GetByID(ctx context.Context, id string) (domain.Playlist, error)
	Save(ctx context.Context, p domain.Playlist) error
	// LastPlaylistID returns "" when nothing was remembered.
	LastPlaylistID(ctx context.Context) (string, error)
	// SetLastPlaylistID remembers id; an empty id clears the setting.
	SetLastPlaylistID(ctx context.Context, id string) error
}
