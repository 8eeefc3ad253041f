package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective match configuration",
	Long: `Print the match configuration as YAML after the config file search
and the play flags have been applied. Save the output to
~/.connectplus/configs/match.yaml or ./configs/match.yaml to make it the default.

Examples:
  connectplus config > configs/match.yaml
  connectplus config --width 9 --height 7 --win 5`,
	Run: runConfig,
}

func init() {
	// Same overrides as play, so the output shows what play would use.
	addMatchFlags(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) {
	cfg, err := matchConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(string(data))
}
