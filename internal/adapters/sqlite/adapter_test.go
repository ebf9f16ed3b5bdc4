package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func samplePlaylist() domain.Playlist {
	return domain.Playlist{
		ID:         "pl-1",
		Name:       "Test Playlist",
		SnapshotID: "snap-1",
		Tracks: []domain.Track{
			{
				ID:          "t2",
				URI:         "spotify:track:t2",
				Title:       "Song Two",
				Artists:     []string{"Artist B", "Feat C"},
				Album:       "Album B",
				AddedBy:     "alice",
				ReleaseDate: "2010-05-01",
				Popularity:  70,
			},
			{
				ID:      "t1",
				URI:     "spotify:track:t1",
				Title:   "Song One",
				Artists: []string{"Artist A"},
				AddedBy: "bob",
			},
			{
				ID:      "t2",
				URI:     "spotify:track:t2",
				Title:   "Song Two",
				Artists: []string{"Artist B", "Feat C"},
				Album:   "Album B",
				AddedBy: "bob",
			},
		},
	}
}

func TestAdapter_GetByID(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, a *Adapter) string
		wantErr error
		want    domain.Playlist
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "returns playlist with ordered tracks",
			setup: func(t *testing.T, a *Adapter) string {
				p := samplePlaylist()
				if err := a.Save(context.Background(), p); err != nil {
					t.Fatalf("save playlist: %v", err)
				}
				return p.ID
			},
			want: func() domain.Playlist {
				p := samplePlaylist()
				// The track row is shared, so the last write wins for track fields.
				p.Tracks[0].ReleaseDate = ""
				p.Tracks[0].Popularity = 0
				return p
			}(),
		},
		{
			name: "save replaces previous snapshot",
			setup: func(t *testing.T, a *Adapter) string {
				p := samplePlaylist()
				if err := a.Save(context.Background(), p); err != nil {
					t.Fatalf("save playlist: %v", err)
				}
				p.SnapshotID = "snap-2"
				p.Name = "Renamed"
				p.Tracks = p.Tracks[1:2]
				if err := a.Save(context.Background(), p); err != nil {
					t.Fatalf("save playlist again: %v", err)
				}
				return p.ID
			},
			want: domain.Playlist{
				ID:         "pl-1",
				Name:       "Renamed",
				SnapshotID: "snap-2",
				Tracks:     samplePlaylist().Tracks[1:2],
			},
		},
		{
			name: "empty playlist",
			setup: func(t *testing.T, a *Adapter) string {
				if err := a.Save(context.Background(), domain.Playlist{ID: "empty", Name: "Nothing"}); err != nil {
					t.Fatalf("save playlist: %v", err)
				}
				return "empty"
			},
			want: domain.Playlist{ID: "empty", Name: "Nothing", Tracks: []domain.Track{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)

			playlistID := tt.setup(t, a)
			got, err := a.GetByID(context.Background(), playlistID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("playlist mismatch:\n got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestAdapter_LastPlaylistID(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	got, err := a.LastPlaylistID(ctx)
	if err != nil || got != "" {
		t.Fatalf("initial: got %q, %v", got, err)
	}

	for _, id := range []string{"first", "second"} {
		if err := a.SetLastPlaylistID(ctx, id); err != nil {
			t.Fatalf("set %q: %v", id, err)
		}
		got, err := a.LastPlaylistID(ctx)
		if err != nil || got != id {
			t.Fatalf("after set %q: got %q, %v", id, got, err)
		}
	}

	if err := a.SetLastPlaylistID(ctx, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = a.LastPlaylistID(ctx)
	if err != nil || got != "" {
		t.Fatalf("after clear: got %q, %v", got, err)
	}
}

func TestAdapter_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earworm.db")
	a, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.Save(context.Background(), samplePlaylist()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got, err := b.GetByID(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SnapshotID != "snap-1" || len(got.Tracks) != 3 {
		t.Fatalf("unexpected playlist after reopen: %+v", got)
	}
}
