package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/earworm/internal/config"
)

var (
	// global flags
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "earworm",
	Short: "guess the song from the first seconds of a spotify playlist",
	Long: `earworm plays short snippets of tracks from a spotify playlist and asks
for the title, artist, album, release year or the person who added them.

run "earworm play" for the terminal game or "earworm serve" for the http api.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig reads the config file and applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := config.ParseLevel(logLevel); err != nil {
			return nil, nil, err
		}
		cfg.LogLevel = logLevel
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
