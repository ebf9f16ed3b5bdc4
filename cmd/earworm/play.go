package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/earworm/internal/adapters/mpris"
	"github.com/ewilliams-labs/earworm/internal/core/domain"
	"github.com/ewilliams-labs/earworm/internal/core/game"
	"github.com/ewilliams-labs/earworm/internal/core/services"
	"github.com/ewilliams-labs/earworm/internal/tui"
)

var (
	playMode         string
	playDifficulty   string
	playSongs        int
	playSkips        int
	playEven         bool
	playUsers        []string
	playMprisService string
)

var playCmd = &cobra.Command{
	Use:   "play [playlist-id]",
	Short: "play a game in the terminal",
	Long: `starts a game on the given playlist, the last one played, or the
standard playlist. audio goes through the local spotify client over mpris.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&playMode, "mode", "", "guess mode: title, artist, both, album, user or year")
	f.StringVar(&playDifficulty, "difficulty", "", "difficulty: easy, medium or hard")
	f.IntVar(&playSongs, "songs", 0, "number of tracks in the game")
	f.IntVar(&playSkips, "skips", 0, "skip budget, negative for unlimited")
	f.BoolVar(&playEven, "even", false, "spread tracks evenly over contributors")
	f.StringSliceVar(&playUsers, "users", nil, "only play tracks added by these display names")
	f.StringVarP(&playMprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if playMprisService != "" {
		cfg.Player.MprisService = playMprisService
	}

	opts, err := playOptions(cmd, cfg.Game.Mode, cfg.Game.Difficulty)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("songs") {
		opts.Songs = cfg.Game.Songs
	}
	if !cmd.Flags().Changed("skips") {
		opts.Skips = cfg.Game.SkipBudget()
	}
	if !cmd.Flags().Changed("even") {
		opts.EvenDistribution = cfg.Game.EvenDistribution
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var requested string
	if len(args) > 0 {
		requested = args[0]
	}
	playlistID, err := a.svc.ResolvePlaylistID(ctx, requested)
	if err != nil {
		return err
	}
	session, err := a.svc.NewGame(ctx, playlistID, opts)
	if err != nil {
		return fmt.Errorf("failed to start game on %s: %w", playlistID, err)
	}

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer bus.Close()

	player, err := mpris.New(bus, cfg.Player.MprisService)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	model := tui.NewModel(ctx, tui.ModelConfig{
		Session:      session,
		Player:       player,
		PollInterval: cfg.Player.PollInterval,
		HTTPClient:   &http.Client{Timeout: cfg.Spotify.Timeout},
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		_ = player.Pause(context.Background())
		return fmt.Errorf("error running bubble tea: %w", err)
	}
	return nil
}

func playOptions(cmd *cobra.Command, defaultMode, defaultDifficulty string) (services.GameOptions, error) {
	modeText, diffText := defaultMode, defaultDifficulty
	if cmd.Flags().Changed("mode") {
		modeText = playMode
	}
	if cmd.Flags().Changed("difficulty") {
		diffText = playDifficulty
	}
	mode, err := domain.ParseGuessMode(modeText)
	if err != nil {
		return services.GameOptions{}, err
	}
	difficulty, err := domain.ParseDifficulty(diffText)
	if err != nil {
		return services.GameOptions{}, err
	}
	opts := services.GameOptions{
		Mode:             mode,
		Difficulty:       difficulty,
		Songs:            playSongs,
		EvenDistribution: playEven,
		SelectedUsers:    playUsers,
	}
	if playSkips >= 0 {
		opts.Skips = game.Budget(playSkips)
	}
	return opts, nil
}
