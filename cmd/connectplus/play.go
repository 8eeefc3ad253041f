package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/connect-plus/internal/config"
	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/platform/tui"
	"github.com/vovakirdan/connect-plus/internal/registry"
	"github.com/vovakirdan/connect-plus/internal/storage"
)

var (
	flagConfig        string
	flagDifficulty    string
	flagPlayers       []string
	flagP1            string
	flagP2            string
	flagWidth         int
	flagHeight        int
	flagWin           int
	flagPowerups      bool
	flagPowerupLength int
	flagHeadless      bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match",
	Long: `Start a new Connect Plus match.

Controls:
  Left/Right, 1-9  - Choose a column
  Enter/Space      - Drop a token (or remove the selected one)
  X                - Toggle power-up mode, then pick a token with the arrows
  ?                - Show all keys
  Q/Ctrl+C         - Quit (the match is saved and can be resumed)

Seats are human, random, minimax or minimax-deep. Matches with a bot are
played without power-ups.

Difficulty options (bots only):
  easy   - Random moves
  normal - Minimax, 3 plies
  hard   - Minimax, 5 plies

Without a terminal, or with --headless, the match is played on plain
stdin/stdout: type a column number, or 'x <column> <row>' to remove.

Examples:
  connectplus play
  connectplus play --p2 minimax --difficulty hard
  connectplus play --players human,human,human --width 9 --win 4
  connectplus play --p1 minimax --p2 random --headless
  connectplus play --config ./my-match.yaml`,
	Run: runPlay,
}

func init() {
	addMatchFlags(playCmd)
	playCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Play on plain stdin/stdout")
}

// addMatchFlags registers the flags that shape a match configuration.
func addMatchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagConfig, "config", "", "Path to custom match config YAML")
	f.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	f.StringSliceVar(&flagPlayers, "players", nil, "Comma-separated seat kinds, in turn order")
	f.StringVar(&flagP1, "p1", "", "Kind of the first seat")
	f.StringVar(&flagP2, "p2", "", "Kind of the second seat")
	f.IntVar(&flagWidth, "width", 0, "Board width")
	f.IntVar(&flagHeight, "height", 0, "Board height")
	f.IntVar(&flagWin, "win", 0, "Tokens in a row needed to win")
	f.BoolVar(&flagPowerups, "powerups", true, "Enable power-ups")
	f.IntVar(&flagPowerupLength, "powerup-length", 0, "Run length that earns a power-up")
}

// matchConfig loads the configuration and applies the command-line overrides.
func matchConfig(cmd *cobra.Command) (config.MatchConfig, error) {
	cfg, err := config.LoadMatch(flagConfig)
	if err != nil {
		return config.MatchConfig{}, err
	}

	flags := cmd.Flags()
	if len(flagPlayers) > 0 {
		cfg.Players = make([]config.PlayerConfig, len(flagPlayers))
		for i, kind := range flagPlayers {
			cfg.Players[i] = config.PlayerConfig{Kind: kind}
		}
	}
	for i, kind := range []string{flagP1, flagP2} {
		if kind == "" {
			continue
		}
		for len(cfg.Players) <= i {
			cfg.Players = append(cfg.Players, config.PlayerConfig{Kind: config.KindHuman})
		}
		cfg.Players[i] = config.PlayerConfig{Kind: kind}
	}
	if flags.Changed("width") {
		cfg.Board.Width = flagWidth
	}
	if flags.Changed("height") {
		cfg.Board.Height = flagHeight
	}
	if flags.Changed("win") {
		cfg.Board.WinningLength = flagWin
	}
	if flags.Changed("powerups") {
		cfg.Powerups.Enabled = flagPowerups
	}
	if flags.Changed("powerup-length") {
		cfg.Powerups.Length = flagPowerupLength
	}

	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return config.MatchConfig{}, err
		}
		config.ApplyPreset(&cfg, preset)
	}

	if err := cfg.Validate(); err != nil {
		return config.MatchConfig{}, err
	}
	return cfg, nil
}

// matchSeed returns the --seed value or a time-based seed.
func matchSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// openStore opens the database, warning and continuing without it on failure.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil
	}
	return store
}

func runPlay(cmd *cobra.Command, _ []string) {
	cfg, err := matchConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	headless := flagHeadless || !term.IsTerminal(int(os.Stdout.Fd()))

	var result connectplus.Result
	if headless {
		result, err = runHeadless(cfg, store)
	} else {
		if store != nil {
			if ok, _ := store.HasSlot(connectplus.DefaultSlot); ok {
				fmt.Fprintln(os.Stderr, "Note: starting over replaces the saved match. Use 'connectplus resume' to continue it.")
			}
		}
		result, err = tui.RunMatch(tui.MatchOptions{
			Config: cfg,
			Store:  store,
			Seed:   matchSeed(),
			Logger: uiLogger(),
		})
	}

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running match: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result)
}

// runHeadless plays a match without the TUI. Human seats type their moves.
// Headless matches are recorded but not saved for resuming.
func runHeadless(cfg config.MatchConfig, store *storage.Store) (connectplus.Result, error) {
	cfg.Normalize()
	strategies, err := registry.FromConfig(cfg, matchSeed())
	if err != nil {
		return connectplus.Result{}, err
	}

	var con *console
	for i, s := range strategies {
		if s.Kind() != connectplus.KindLocal {
			continue
		}
		if con == nil {
			con = newConsole(os.Stdin, os.Stdout)
		}
		strategies[i] = &consolePlayer{console: con, name: cfg.Players[i].DisplayName(i)}
	}

	g, err := connectplus.NewGame(cfg.Engine(), strategies,
		connectplus.WithLogger(log.Default().WithPrefix("connectplus")))
	if err != nil {
		return connectplus.Result{}, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	result := g.Run(ctx)

	if store != nil {
		if _, err := store.SaveResult(storage.ResultOf(g, time.Since(started))); err != nil {
			log.Warn("could not record result", "error", err)
		}
	}

	fmt.Println()
	fmt.Println(formatBoard(g.Board()))
	return result, nil
}
