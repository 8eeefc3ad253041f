package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/connect-plus/internal/storage"
)

var flagDeleteSlot string

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Show or delete saved matches",
	Long: `List the unfinished matches stored in the database.

Examples:
  connectplus saves
  connectplus saves --delete current`,
	Run: runSaves,
}

func init() {
	savesCmd.Flags().StringVar(&flagDeleteSlot, "delete", "", "Delete the save in this slot")
}

func runSaves(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagDeleteSlot != "" {
		if err := store.DeleteSlot(flagDeleteSlot); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting save: %v\n", err)
			return
		}
		fmt.Printf("Deleted save %q\n", flagDeleteSlot)
		return
	}

	slots, err := store.ListSlots()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing saves: %v\n", err)
		return
	}

	if len(slots) == 0 {
		fmt.Println("No saved matches.")
		return
	}

	// Calculate column widths
	maxSlotLen := 4 // "Slot" header
	for _, s := range slots {
		maxSlotLen = max(maxSlotLen, len(s.Slot))
	}

	fmt.Printf("  %-*s  %-8s  %s\n", maxSlotLen, "Slot", "Size", "Saved")
	fmt.Printf("  %-*s  %-8s  %s\n", maxSlotLen, "----", "----", "-----")
	for _, s := range slots {
		fmt.Printf("  %-*s  %-8d  %s\n", maxSlotLen, s.Slot, s.Size, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'connectplus resume --slot <slot>' to continue a match.")
}
