package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/earworm/internal/adapters/rest"
	"github.com/ewilliams-labs/earworm/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the http api",
	Long: `serves the playlist and game endpoints. clients own audio playback and
report their position to the playback endpoint, which answers with the
player commands to run.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	defaults := rest.Defaults{
		Mode:             domain.GuessMode(cfg.Game.Mode),
		Difficulty:       domain.Difficulty(cfg.Game.Difficulty),
		Songs:            cfg.Game.Songs,
		Skips:            cfg.Game.SkipBudget(),
		EvenDistribution: cfg.Game.EvenDistribution,
	}
	handler := rest.NewHandler(a.svc, defaults, logger)
	go handler.RunJanitor(ctx, cfg.Server.SweepInterval, cfg.Server.GameMaxAge, cfg.Server.FinishedGameTTL)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()
	logger.Info("earworm api listening", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver, "spotify", cfg.Spotify.Driver)

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
			return err
		}
	}
	return nil
}
