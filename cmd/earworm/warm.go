package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var warmCmd = &cobra.Command{
	Use:   "warm <playlist-id>...",
	Short: "fetch playlists into the local cache",
	Long: `refreshes the cached snapshot of every given playlist so the next game
starts without waiting on spotify.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWarm,
}

func init() {
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	bar := progressbar.NewOptions(
		len(args),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionSetDescription("Warming playlists..."),
	)
	err = a.svc.Warm(ctx, args, func(id string, err error) {
		if err != nil {
			logger.Warn("playlist not cached", "playlist_id", id, "error", err)
		}
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	return err
}
