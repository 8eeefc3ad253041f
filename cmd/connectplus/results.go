package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/connect-plus/internal/platform/tui"
	"github.com/vovakirdan/connect-plus/internal/storage"
)

var flagLimit int

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show recorded match results",
	Long: `Display the most recent match results and overall statistics.
In a terminal the results open in a scrollable table.

Examples:
  connectplus results
  connectplus results --limit 20`,
	Run: runResults,
}

func init() {
	resultsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of matches to show")
}

func runResults(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if err := tui.RunScoreboard(store, flagLimit); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return
	}

	results, err := store.RecentResults(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		return
	}
	stats, err := store.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving statistics: %v\n", err)
		return
	}

	fmt.Println(tui.Summary(stats))
	if len(results) == 0 {
		return
	}
	fmt.Println()

	header := make([]string, len(tui.ResultColumns))
	rule := make([]string, len(tui.ResultColumns))
	for i, c := range tui.ResultColumns {
		header[i] = fmt.Sprintf("%-*s", c.Width, c.Title)
		rule[i] = fmt.Sprintf("%-*s", c.Width, strings.Repeat("-", len(c.Title)))
	}
	fmt.Println("  " + strings.Join(header, "  "))
	fmt.Println("  " + strings.Join(rule, "  "))
	for _, r := range results {
		row := tui.ResultRow(r)
		for i, c := range tui.ResultColumns {
			row[i] = fmt.Sprintf("%-*s", c.Width, row[i])
		}
		fmt.Println("  " + strings.Join(row, "  "))
	}
}
