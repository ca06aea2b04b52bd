package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe [partition]",
	Short: "Remove duplicate and invalid records from a partition",
	Long: `Rewrites a partition file in place keeping only valid, non-duplicate
records. The file is untouched when nothing needs removing.`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	partition := args[0]
	remaining, err := knowledgeService.Deduplicate(partition)
	if err != nil {
		return fmt.Errorf("dedupe %s: %w", partition, err)
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s cleaned, %d records remain\n", partition, remaining)
	return nil
}
