// Package config loads earworm settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StandardPlaylistID is offered when no playlist was played before.
	StandardPlaylistID = "37i9dQZF1DX4o1oenSJRJd"

	DefaultMprisService = "org.mpris.MediaPlayer2.spotify"
	DefaultSpotifyURL   = "https://api.spotify.com/v1"
)

type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Server  ServerConfig  `yaml:"server"`
	Spotify SpotifyConfig `yaml:"spotify"`
	Storage StorageConfig `yaml:"storage"`
	Game    GameConfig    `yaml:"game"`
	Player  PlayerConfig  `yaml:"player"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`

	// Games older than GameMaxAge, or over for FinishedGameTTL, are dropped
	// every SweepInterval. A zero GameMaxAge keeps running games forever.
	GameMaxAge      time.Duration `yaml:"game_max_age"`
	FinishedGameTTL time.Duration `yaml:"finished_game_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
}

type SpotifyConfig struct {
	// Driver is "api" (hand-rolled REST client) or "sdk" (zmb3/spotify).
	Driver       string `yaml:"driver"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	BaseURL      string `yaml:"base_url"`
	TokenURL     string `yaml:"token_url"`
	Market       string `yaml:"market"`

	// MaxRetries of 1 disables retries; failed fetches surface immediately.
	MaxRetries    int           `yaml:"max_retries"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
	MaxExtraPages int           `yaml:"max_extra_pages"`
	Timeout       time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	// Driver is "sqlite", "gcs" or "memory".
	Driver string `yaml:"driver"`

	Path string `yaml:"path"`

	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type GameConfig struct {
	DefaultPlaylistID string `yaml:"default_playlist_id"`
	Mode              string `yaml:"mode"`
	Difficulty        string `yaml:"difficulty"`
	Songs             int    `yaml:"songs"`
	// Skips below zero means unlimited.
	Skips            int  `yaml:"skips"`
	EvenDistribution bool `yaml:"even_distribution"`
	ArtworkWorkers   int  `yaml:"artwork_workers"`
}

type PlayerConfig struct {
	MprisService string        `yaml:"mpris_service"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			GameMaxAge:        6 * time.Hour,
			FinishedGameTTL:   10 * time.Minute,
			SweepInterval:     time.Minute,
		},
		Spotify: SpotifyConfig{
			Driver:        "api",
			BaseURL:       DefaultSpotifyURL,
			Market:        "US",
			MaxRetries:    1,
			RetryBackoff:  500 * time.Millisecond,
			MaxExtraPages: 10,
			Timeout:       15 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "earworm.db",
			Prefix: "earworm",
		},
		Game: GameConfig{
			DefaultPlaylistID: StandardPlaylistID,
			Mode:              "both",
			Difficulty:        "easy",
			Songs:             10,
			Skips:             8,
			ArtworkWorkers:    4,
		},
		Player: PlayerConfig{
			MprisService: DefaultMprisService,
			PollInterval: 50 * time.Millisecond,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.Server.Addr, "EARWORM_ADDR")

	setString(&c.Spotify.Driver, "SPOTIFY_DRIVER")
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setString(&c.Spotify.BaseURL, "SPOTIFY_BASE_URL")
	setString(&c.Spotify.Market, "SPOTIFY_MARKET")
	if err := setInt(&c.Spotify.MaxRetries, "SPOTIFY_MAX_RETRIES"); err != nil {
		return err
	}
	var backoffMs int
	if err := setInt(&backoffMs, "SPOTIFY_RETRY_BACKOFF_MS"); err != nil {
		return err
	}
	if backoffMs > 0 {
		c.Spotify.RetryBackoff = time.Duration(backoffMs) * time.Millisecond
	}

	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Path, "EARWORM_DB_PATH")
	setString(&c.Storage.Bucket, "EARWORM_GCS_BUCKET")
	setString(&c.Storage.Prefix, "EARWORM_GCS_PREFIX")

	setString(&c.Player.MprisService, "MPRIS_SERVICE")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks driver names and numeric ranges.
func (c *Config) Validate() error {
	var errs []error
	switch c.Spotify.Driver {
	case "api", "sdk":
	default:
		errs = append(errs, fmt.Errorf("unknown spotify driver %q", c.Spotify.Driver))
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for sqlite"))
		}
	case "gcs":
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for gcs"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Spotify.MaxRetries < 1 {
		errs = append(errs, errors.New("spotify.max_retries must be at least 1"))
	}
	if c.Spotify.MaxExtraPages < 0 {
		errs = append(errs, errors.New("spotify.max_extra_pages must not be negative"))
	}
	if c.Server.SweepInterval <= 0 {
		errs = append(errs, errors.New("server.sweep_interval must be positive"))
	}
	if c.Server.GameMaxAge < 0 || c.Server.FinishedGameTTL < 0 {
		errs = append(errs, errors.New("server.game_max_age and server.finished_game_ttl must not be negative"))
	}
	if c.Game.Songs < 1 {
		errs = append(errs, errors.New("game.songs must be positive"))
	}
	if c.Game.ArtworkWorkers < 1 {
		errs = append(errs, errors.New("game.artwork_workers must be positive"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// RequireCredentials reports missing Spotify client credentials.
func (c *Config) RequireCredentials() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return errors.New("config: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	return nil
}

// SkipBudget converts Game.Skips into a session budget; nil is unlimited.
func (g GameConfig) SkipBudget() *int {
	if g.Skips < 0 {
		return nil
	}
	n := g.Skips
	return &n
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
