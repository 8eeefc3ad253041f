// connectplus is an N-in-a-row game with power-ups for the terminal.
//
// Usage:
//
//	connectplus play           - Play a match (TUI, or headless with --headless)
//	connectplus resume         - Resume the last unfinished match
//	connectplus saves          - Show or delete saved matches
//	connectplus results        - Show recorded match results
//	connectplus bots           - List available opponents
//	connectplus config         - Print the effective match configuration
//	connectplus serve          - Start SSH server for remote play
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible bots
//	--db <path>          - Set database path (default: ~/.connectplus/connectplus.db)
//	--log-level <level>  - debug, info, warn or error
//	--log-file <path>    - Write logs to a file instead of stderr
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

// logFile is the open --log-file, closed when the command finishes.
var logFile *os.File

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "connectplus",
	Short: "Connect Plus - N-in-a-row with power-ups in your terminal",
	Long: `Connect Plus is a terminal take on the classic drop-token game.
Line up tokens to win; shorter runs earn power-ups that remove a token
and let the rest of its column fall.

Available commands:
  play     - Play a match
  resume   - Resume the last unfinished match
  saves    - Show or delete saved matches
  results  - View past results
  bots     - List available opponents
  config   - Print the effective configuration
  serve    - Start SSH server for remote play

Examples:
  connectplus play
  connectplus play --p2 minimax --difficulty hard
  connectplus play --width 9 --height 7 --win 5
  connectplus serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.connectplus/connectplus.db", "Path to the saves and results database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(botsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

// setupLogging configures the default logger from the global flags.
func setupLogging(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		logFile = f
		log.SetOutput(f)
	}
	return nil
}

// uiLogger returns the logger for full-screen commands. Without a log
// file, output would corrupt the screen, so it is discarded.
func uiLogger() *log.Logger {
	if logFile != nil {
		return log.Default()
	}
	l := log.New(io.Discard)
	l.SetLevel(log.GetLevel())
	return l
}
