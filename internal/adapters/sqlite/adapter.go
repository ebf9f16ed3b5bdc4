// Package sqlite provides a SQLite-backed implementation of the playlist
// snapshot cache.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

const lastPlaylistKey = "last_playlist_id"

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.PlaylistRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) GetByID(ctx context.Context, id string) (domain.Playlist, error) {
	row := a.db.QueryRowContext(ctx, "SELECT id, name, snapshot_id FROM playlists WHERE id = ?", id)
	var playlist domain.Playlist
	if err := row.Scan(&playlist.ID, &playlist.Name, &playlist.SnapshotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load playlist: %w", err)
	}
	playlist.Tracks = []domain.Track{}

	trackRows, err := a.db.QueryContext(ctx, `
		SELECT t.id, t.uri, t.title, t.artists, t.album, t.release_date, t.popularity, pt.added_by
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`, playlist.ID)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to load playlist tracks: %w", err)
	}
	defer trackRows.Close()

	for trackRows.Next() {
		var track domain.Track
		var uri, album, releaseDate, addedBy sql.NullString
		var artists string
		var popularity sql.NullInt64
		if err := trackRows.Scan(
			&track.ID,
			&uri,
			&track.Title,
			&artists,
			&album,
			&releaseDate,
			&popularity,
			&addedBy,
		); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		if err := json.Unmarshal([]byte(artists), &track.Artists); err != nil {
			return domain.Playlist{}, fmt.Errorf("failed to decode artists of %s: %w", track.ID, err)
		}
		track.URI = uri.String
		track.Album = album.String
		track.ReleaseDate = releaseDate.String
		track.AddedBy = addedBy.String
		track.Popularity = int(popularity.Int64)
		playlist.Tracks = append(playlist.Tracks, track)
	}
	if err := trackRows.Err(); err != nil {
		return domain.Playlist{}, fmt.Errorf("failed to iterate playlist tracks: %w", err)
	}

	return playlist, nil
}

// Save replaces the cached copy of p, keeping the track order.
func (a *Adapter) Save(ctx context.Context, p domain.Playlist) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPlaylist := `
		INSERT INTO playlists (id, name, snapshot_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			snapshot_id=excluded.snapshot_id,
			updated_at=CURRENT_TIMESTAMP;
	`
	if _, err := tx.ExecContext(ctx, queryPlaylist, p.ID, p.Name, p.SnapshotID); err != nil {
		return fmt.Errorf("failed to save playlist metadata: %w", err)
	}

	// Tracks are shared between playlists; only the links are reset.
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_tracks WHERE playlist_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear old tracks: %w", err)
	}

	stmtTrack, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (id, uri, title, artists, album, release_date, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uri=excluded.uri,
			title=excluded.title,
			artists=excluded.artists,
			album=excluded.album,
			release_date=excluded.release_date,
			popularity=excluded.popularity;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track upsert: %w", err)
	}
	defer stmtTrack.Close()

	stmtLink, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, position, track_id, added_by)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track link: %w", err)
	}
	defer stmtLink.Close()

	for i, t := range p.Tracks {
		artists := t.Artists
		if artists == nil {
			artists = []string{}
		}
		encoded, err := json.Marshal(artists)
		if err != nil {
			return fmt.Errorf("failed to encode artists of %s: %w", t.ID, err)
		}
		if _, err := stmtTrack.ExecContext(ctx, t.ID, t.URI, t.Title, string(encoded), t.Album, t.ReleaseDate, t.Popularity); err != nil {
			return fmt.Errorf("failed to save track %s: %w", t.ID, err)
		}
		if _, err := stmtLink.ExecContext(ctx, p.ID, i, t.ID, t.AddedBy); err != nil {
			return fmt.Errorf("failed to link track %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

func (a *Adapter) LastPlaylistID(ctx context.Context) (string, error) {
	var id string
	err := a.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", lastPlaylistKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load last playlist: %w", err)
	}
	return id, nil
}

func (a *Adapter) SetLastPlaylistID(ctx context.Context, id string) error {
	if id == "" {
		if _, err := a.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", lastPlaylistKey); err != nil {
			return fmt.Errorf("failed to clear last playlist: %w", err)
		}
		return nil
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, lastPlaylistKey, id)
	if err != nil {
		return fmt.Errorf("failed to save last playlist: %w", err)
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		uri TEXT,
		title TEXT NOT NULL,
		artists TEXT NOT NULL,
		album TEXT,
		release_date TEXT,
		popularity INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		snapshot_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT,
		position INTEGER,
		track_id TEXT NOT NULL,
		added_by TEXT,
		PRIMARY KEY (playlist_id, position),
		FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Databases created before snapshot validation lack the column.
	if _, err := a.db.Exec("ALTER TABLE playlists ADD COLUMN snapshot_id TEXT NOT NULL DEFAULT ''"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
