package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ewilliams-labs/earworm/internal/adapters/gcs"
	"github.com/ewilliams-labs/earworm/internal/adapters/memory"
	"github.com/ewilliams-labs/earworm/internal/adapters/spotify"
	"github.com/ewilliams-labs/earworm/internal/adapters/spotifysdk"
	"github.com/ewilliams-labs/earworm/internal/adapters/sqlite"
	"github.com/ewilliams-labs/earworm/internal/config"
	"github.com/ewilliams-labs/earworm/internal/core/ports"
	"github.com/ewilliams-labs/earworm/internal/core/services"
	"github.com/ewilliams-labs/earworm/internal/worker"
)

// app holds the wired core plus whatever must be closed on exit.
type app struct {
	svc    *services.Orchestrator
	closer func() error
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	provider := newSpotify(ctx, cfg, logger)

	repo, closer, err := newRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(provider, cfg.Game.ArtworkWorkers, logger)
	svc := services.NewOrchestrator(provider, repo,
		services.WithArtwork(pool),
		services.WithLogger(logger),
		services.WithStandardPlaylistID(cfg.Game.DefaultPlaylistID),
	)
	return &app{svc: svc, closer: closer}, nil
}

func newSpotify(ctx context.Context, cfg *config.Config, logger *slog.Logger) ports.SpotifyProvider {
	sc := cfg.Spotify
	switch sc.Driver {
	case "sdk":
		hc := spotifysdk.NewHTTPClient(ctx, sc.ClientID, sc.ClientSecret, sc.TokenURL, sc.Timeout)
		return spotifysdk.New(hc, sc.BaseURL, sc.MaxRetries > 1,
			spotifysdk.WithMarket(sc.Market),
			spotifysdk.WithMaxExtraPages(sc.MaxExtraPages),
			spotifysdk.WithLogger(logger),
		)
	default:
		hc := spotify.NewAuthenticatedHTTPClient(ctx, sc.ClientID, sc.ClientSecret, sc.TokenURL, sc.Timeout)
		return spotify.NewClient(hc, sc.BaseURL,
			spotify.WithRetries(sc.MaxRetries, sc.RetryBackoff),
			spotify.WithMaxExtraPages(sc.MaxExtraPages),
			spotify.WithLogger(logger),
		)
	}
}

func newRepository(ctx context.Context, sc config.StorageConfig) (ports.PlaylistRepository, func() error, error) {
	switch sc.Driver {
	case "sqlite":
		db, err := sqlite.NewAdapter(sc.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, db.Close, nil
	case "gcs":
		store, err := gcs.New(ctx, sc.Bucket, sc.Prefix, sc.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bucket: %w", err)
		}
		return store, store.Close, nil
	case "memory":
		return memory.NewRepository(), nil, nil
	}
	return nil, nil, errors.New("unknown storage driver: " + sc.Driver)
}
