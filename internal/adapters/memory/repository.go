// Package memory is a process-local playlist repository used by tests and
// the "memory" storage driver.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

type Repository struct {
	mu        sync.RWMutex
	playlists map[string]domain.Playlist
	last      string
}

var _ ports.PlaylistRepository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{playlists: make(map[string]domain.Playlist)}
}

func (r *Repository) GetByID(_ context.Context, id string) (domain.Playlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.playlists[id]
	if !ok {
		return domain.Playlist{}, domain.ErrNotFound
	}
	return clonePlaylist(p), nil
}

func (r *Repository) Save(_ context.Context, p domain.Playlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playlists[p.ID] = clonePlaylist(p)
	return nil
}

func (r *Repository) LastPlaylistID(context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, nil
}

func (r *Repository) SetLastPlaylistID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = id
	return nil
}

func clonePlaylist(p domain.Playlist) domain.Playlist {
	out := p
	out.Tracks = make([]domain.Track, len(p.Tracks))
	for i, t := range p.Tracks {
		t.Artists = slices.Clone(t.Artists)
		out.Tracks[i] = t
	}
	return out
}
