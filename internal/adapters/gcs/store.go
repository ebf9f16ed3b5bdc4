// Package gcs keeps playlist snapshots as JSON objects in a Google Cloud
// Storage bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

var errObjectMissing = errors.New("gcs adapter: object does not exist")

// objects is the slice of the bucket API the Store needs.
type objects interface {
	read(ctx context.Context, name string) ([]byte, error)
	write(ctx context.Context, name string, data []byte) error
	delete(ctx context.Context, name string) error
	close() error
}

// Store implements ports.PlaylistRepository.
type Store struct {
	objects objects
	prefix  string
}

var _ ports.PlaylistRepository = (*Store)(nil)

type snapshotTrack struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album,omitempty"`
	AddedBy     string   `json:"added_by,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Popularity  int      `json:"popularity,omitempty"`
}

type snapshot struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	SnapshotID string          `json:"snapshot_id"`
	Tracks     []snapshotTrack `json:"tracks"`
}

type setting struct {
	Value string `json:"value"`
}

func newStore(o objects, prefix string) *Store {
	return &Store{objects: o, prefix: strings.Trim(prefix, "/")}
}

func (s *Store) objectName(parts ...string) string {
	if s.prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{s.prefix}, parts...)...)
}

func (s *Store) playlistObject(id string) string {
	return s.objectName("playlists", id+".json")
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.Playlist, error) {
	data, err := s.objects.read(ctx, s.playlistObject(id))
	if errors.Is(err, errObjectMissing) {
		return domain.Playlist{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("gcs adapter: read playlist %s: %w", id, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Playlist{}, fmt.Errorf("gcs adapter: decode playlist %s: %w", id, err)
	}
	p := domain.Playlist{ID: snap.ID, Name: snap.Name, SnapshotID: snap.SnapshotID, Tracks: make([]domain.Track, 0, len(snap.Tracks))}
	for _, t := range snap.Tracks {
		p.Tracks = append(p.Tracks, domain.Track(t))
	}
	return p, nil
}

func (s *Store) Save(ctx context.Context, p domain.Playlist) error {
	snap := snapshot{ID: p.ID, Name: p.Name, SnapshotID: p.SnapshotID, Tracks: make([]snapshotTrack, 0, len(p.Tracks))}
	for _, t := range p.Tracks {
		snap.Tracks = append(snap.Tracks, snapshotTrack(t))
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("gcs adapter: encode playlist %s: %w", p.ID, err)
	}
	if err := s.objects.write(ctx, s.playlistObject(p.ID), data); err != nil {
		return fmt.Errorf("gcs adapter: write playlist %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) LastPlaylistID(ctx context.Context) (string, error) {
	data, err := s.objects.read(ctx, s.objectName("settings", "last_playlist.json"))
	if errors.Is(err, errObjectMissing) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("gcs adapter: read last playlist: %w", err)
	}
	var v setting
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("gcs adapter: decode last playlist: %w", err)
	}
	return v.Value, nil
}

func (s *Store) SetLastPlaylistID(ctx context.Context, id string) error {
	name := s.objectName("settings", "last_playlist.json")
	if id == "" {
		if err := s.objects.delete(ctx, name); err != nil && !errors.Is(err, errObjectMissing) {
			return fmt.Errorf("gcs adapter: clear last playlist: %w", err)
		}
		return nil
	}
	data, _ := json.Marshal(setting{Value: id})
	if err := s.objects.write(ctx, name, data); err != nil {
		return fmt.Errorf("gcs adapter: write last playlist: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.objects.close()
}

func readAll(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}
