package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/connect-plus/internal/registry"
)

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "List available opponents",
	Long:  `Shows every seat kind that can be used with --players, --p1 and --p2.`,
	Run:   runBots,
}

func runBots(_ *cobra.Command, _ []string) {
	opponents := registry.List()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, o := range opponents {
		maxIDLen = max(maxIDLen, len(o.ID))
	}

	// Print header
	fmt.Printf("  %-*s  %-18s  %s\n", maxIDLen, "ID", "Title", "Description")
	fmt.Printf("  %-*s  %-18s  %s\n", maxIDLen, "--", "-----", "-----------")

	for _, o := range opponents {
		fmt.Printf("  %-*s  %-18s  %s\n", maxIDLen, o.ID, o.Title, o.Description)
	}

	fmt.Println()
	fmt.Println("Run 'connectplus play --p2 <id>' to play against one.")
}
