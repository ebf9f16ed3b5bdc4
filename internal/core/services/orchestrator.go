package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/game"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
)

const (
	// StandardPlaylistID is played when no playlist was chosen yet.
	StandardPlaylistID = "37i9dQZF1DX4o1oenSJRJd"
	DefaultSongs       = 10
)

// ArtworkBatch resolves cover art for many tracks in one awaited call.
type ArtworkBatch interface {
	Resolve(ctx context.Context, trackIDs []string) map[string]string
}

// Orchestrator coordinates the Spotify ports, the snapshot cache and the game
// core.
type Orchestrator struct {
	spotify    ports.SpotifyProvider
	repo       ports.PlaylistRepository
	artwork    ArtworkBatch
	logger     *slog.Logger
	standardID string
	rng        *rand.Rand
}

type Option func(*Orchestrator)

func WithArtwork(a ArtworkBatch) Option {
	return func(o *Orchestrator) { o.artwork = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithStandardPlaylistID(id string) Option {
	return func(o *Orchestrator) { o.standardID = id }
}

// WithRand fixes the random source used for shuffling and selection.
func WithRand(r *rand.Rand) Option {
	return func(o *Orchestrator) { o.rng = r }
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(spotify ports.SpotifyProvider, repo ports.PlaylistRepository, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		spotify:    spotify,
		repo:       repo,
		logger:     slog.Default(),
		standardID: StandardPlaylistID,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GameOptions is the menu selection for a new game.
type GameOptions struct {
	Mode             domain.GuessMode
	Difficulty       domain.Difficulty
	Songs            int
	Skips            *int // nil means unlimited
	EvenDistribution bool
	SelectedUsers    []string // display names
}

// ResolvePlaylistID falls back to the remembered playlist, then to the
// standard one.
func (o *Orchestrator) ResolvePlaylistID(ctx context.Context, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	last, err := o.repo.LastPlaylistID(ctx)
	if err != nil {
		return "", fmt.Errorf("service: failed to load last playlist: %w", err)
	}
	if last != "" {
		return last, nil
	}
	return o.standardID, nil
}

// IsStandard reports whether id is the standard playlist.
func (o *Orchestrator) IsStandard(id string) bool {
	return id == o.standardID
}

// LoadPlaylist returns the playlist for id (see ResolvePlaylistID), served
// from the snapshot cache while its snapshot id is current. Choosing the
// standard playlist forgets the remembered one.
func (o *Orchestrator) LoadPlaylist(ctx context.Context, id string) (domain.Playlist, error) {
	id, err := o.ResolvePlaylistID(ctx, id)
	if err != nil {
		return domain.Playlist{}, err
	}

	p, err := o.cachedOrFetch(ctx, id)
	if err != nil {
		return domain.Playlist{}, err
	}

	remember := id
	if o.IsStandard(id) {
		remember = ""
	}
	if err := o.repo.SetLastPlaylistID(ctx, remember); err != nil {
		o.logger.Warn("service: failed to remember playlist", "playlist", id, "error", err)
	}
	return p, nil
}

func (o *Orchestrator) cachedOrFetch(ctx context.Context, id string) (domain.Playlist, error) {
	cached, err := o.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		snapshot, checkErr := o.spotify.FetchSnapshotID(ctx, id)
		if checkErr != nil {
			o.logger.Warn("service: snapshot check failed, serving cached playlist", "playlist", id, "error", checkErr)
			return cached, nil
		}
		if cached.IsFresh(snapshot) {
			o.logger.Debug("service: playlist cache hit", "playlist", id, "snapshot", snapshot)
			return cached, nil
		}
	case !errors.Is(err, domain.ErrNotFound):
		o.logger.Warn("service: playlist cache read failed", "playlist", id, "error", err)
	}
	return o.refresh(ctx, id)
}

// refresh fetches id from the source and stores the snapshot.
func (o *Orchestrator) refresh(ctx context.Context, id string) (domain.Playlist, error) {
	p, err := o.spotify.FetchPlaylist(ctx, id)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to fetch playlist: %w", err)
	}
	if err := o.repo.Save(ctx, p); err != nil {
		o.logger.Warn("service: failed to cache playlist", "playlist", id, "error", err)
	}
	return p, nil
}

// ResolveUsernames looks up the contributors of p in one batch. The standard
// playlist has no meaningful contributors and is skipped. A failed batch is
// logged and yields an empty map.
func (o *Orchestrator) ResolveUsernames(ctx context.Context, p domain.Playlist) game.Usernames {
	ids := p.Contributors()
	if o.IsStandard(p.ID) || len(ids) == 0 {
		return game.Usernames{}
	}
	names, err := o.spotify.FetchUsernames(ctx, ids)
	if err != nil {
		o.logger.Warn("service: username lookup failed", "playlist", p.ID, "users", len(ids), "error", err)
		return game.Usernames{}
	}
	return game.Usernames(names)
}

// NewGame loads the playlist, picks the tracks and builds a session whose
// suggestion pool is the whole playlist.
func (o *Orchestrator) NewGame(ctx context.Context, playlistID string, opts GameOptions) (*game.Session, error) {
	if _, err := domain.ParseGuessMode(string(opts.Mode)); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if _, err := domain.ParseDifficulty(string(opts.Difficulty)); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	p, err := o.LoadPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if len(p.Tracks) == 0 {
		return nil, fmt.Errorf("service: playlist %s: %w", p.ID, domain.ErrNoTracks)
	}
	names := o.ResolveUsernames(ctx, p)

	songs := opts.Songs
	if songs <= 0 {
		songs = DefaultSongs
	}
	shuffled := game.Shuffle(p.Tracks, o.rng)
	selected := game.SelectTracks(shuffled, songs, opts.EvenDistribution, opts.SelectedUsers, names, o.rng)
	pool := game.Shuffle(p.Tracks, o.rng)

	var artwork map[string]string
	if o.artwork != nil {
		ids := make([]string, len(selected))
		for i, t := range selected {
			ids[i] = t.ID
		}
		artwork = o.artwork.Resolve(ctx, ids)
	}

	session, err := game.NewSession(game.Config{
		Mode:         opts.Mode,
		Difficulty:   opts.Difficulty,
		Skips:        opts.Skips,
		PlaylistName: p.Name,
	}, selected, pool, names, artwork)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	o.logger.Info("service: game created",
		"playlist", p.ID,
		"tracks", len(selected),
		"mode", session.Config().Mode,
		"difficulty", session.Config().Difficulty,
		"even", opts.EvenDistribution,
	)
	return session, nil
}

// Warm refetches every playlist into the cache. done is called after each
// playlist with its error, if any.
func (o *Orchestrator) Warm(ctx context.Context, ids []string, done func(id string, err error)) error {
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		_, err := o.refresh(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("playlist %s: %w", id, err))
		}
		if done != nil {
			done(id, err)
		}
	}
	return errors.Join(errs...)
}
