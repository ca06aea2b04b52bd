package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [partition]",
	Short: "Show partition statistics",
	Long: `Prints record counts, category breakdown and average content length
for a partition. With no argument, summarises every partition.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if len(args) == 1 {
		return printStats(cmd, args[0])
	}

	partitions, err := knowledgeService.Partitions()
	if err != nil {
		return fmt.Errorf("list partitions: %w", err)
	}
	if len(partitions) == 0 {
		cmd.Println("Knowledge base is empty.")
		return nil
	}
	for _, p := range partitions {
		if err := printStats(cmd, p); err != nil {
			return err
		}
	}
	return nil
}

func printStats(cmd *cobra.Command, partition string) error {
	stats, err := knowledgeService.Stats(partition)
	if err != nil {
		return fmt.Errorf("stats for %s: %w", partition, err)
	}

	cmd.Printf("%s: %d records, avg %d chars\n", partition, stats.TotalEntries, stats.AvgContentLength)

	categories := make([]string, 0, len(stats.Categories))
	for c := range stats.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		cmd.Printf("  %s: %d\n", c, stats.Categories[c])
	}
	return nil
}
