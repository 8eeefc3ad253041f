package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/connect-plus/internal/config"
	"github.com/vovakirdan/connect-plus/internal/platform/tui"
	"github.com/vovakirdan/connect-plus/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagOpponent    string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Connect Plus SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection plays its own match against a bot. Unfinished matches
are saved per user and resumed on the next connection. Results of all users
go to the same database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.connectplus/host_key

Examples:
  connectplus serve                           # Listen on :23234 with auto-generated key
  connectplus serve --ssh :2222               # Listen on port 2222
  connectplus serve --opponent minimax-deep   # Stronger bot
  connectplus serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagOpponent, "opponent", config.KindMinimax, "Bot that SSH users play against")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom match config YAML")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	match, err := config.LoadMatch(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	match.Players = []config.PlayerConfig{
		{Kind: config.KindHuman},
		{Kind: flagOpponent},
	}

	store := openStore()
	err = serve(store, match)
	if store != nil {
		store.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serve runs the SSH server for the given match template until interrupted.
func serve(store *storage.Store, match config.MatchConfig) error {
	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.Store = store
	cfg.Match = match
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting Connect Plus SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
