package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/connect-plus/internal/config"
	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/platform/tui"
	"github.com/vovakirdan/connect-plus/internal/storage"
)

var flagSlot string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the last unfinished match",
	Long: `Continue a match that was quit before it ended.

Matches are saved after every move and the save is removed once the match
is won or drawn. The board, seats and power-ups are restored as they were.

Examples:
  connectplus resume
  connectplus resume --slot ssh:alice`,
	Run: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&flagSlot, "slot", connectplus.DefaultSlot, "Save slot to resume")
}

func runResume(_ *cobra.Command, _ []string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: resume needs a terminal")
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	// Timing comes from the configuration, the rules from the save.
	cfg, err := config.LoadMatch("")
	if err != nil {
		cfg = config.DefaultMatchConfig()
	}

	result, err := tui.RunMatch(tui.MatchOptions{
		Config: cfg,
		Store:  store,
		Slot:   flagSlot,
		Resume: true,
		Seed:   matchSeed(),
		Logger: uiLogger(),
	})
	store.Close()

	switch {
	case errors.Is(err, connectplus.ErrNoSave):
		fmt.Println("No saved match. Start one with 'connectplus play'.")
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error resuming match: %v\n", err)
		os.Exit(1)
	default:
		fmt.Println(result)
	}
}
