package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var entriesTag string

var entriesCmd = &cobra.Command{
	Use:   "entries [partition]",
	Short: "List records in a partition by category tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntries,
}

func init() {
	entriesCmd.Flags().StringVarP(&entriesTag, "tag", "t", "", "category tag to filter by")
	_ = entriesCmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(entriesCmd)
}

func runEntries(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	partition := args[0]
	entries, err := knowledgeService.EntriesByTag(partition, entriesTag)
	if err != nil {
		return fmt.Errorf("entries for %s: %w", partition, err)
	}

	if len(entries) == 0 {
		cmd.Printf("No records tagged %q in %s.\n", entriesTag, partition)
		return nil
	}
	for i := range entries {
		cmd.Printf("  [%d] %s\n", i+1, entries[i].Title)
		cmd.Printf("      %s\n", snippet(entries[i].Content, 120))
	}
	return nil
}
