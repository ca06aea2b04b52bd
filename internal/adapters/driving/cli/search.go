package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	configfile "github.com/atlas-safety/safekb-cli/internal/adapters/driven/config/file"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

var (
	searchPartition string
	searchLimit     int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search knowledge base records",
	Long: `Searches record titles and content within one partition.
Matching is case-insensitive substring search.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchPartition, "partition", "p", "", "partition to search (default from config)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	partition := searchPartition
	if partition == "" {
		partition = defaultPartition()
	}

	results, err := knowledgeService.Search(partition, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchList(cmd, partition, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.Entry) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchList(cmd *cobra.Command, partition string, results []domain.Entry) error {
	if len(results) == 0 {
		cmd.Printf("No results found in %s.\n", partition)
		return nil
	}

	cmd.Printf("Results in %s:\n", partition)
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s\n", i+1, results[i].Title)
		if results[i].Category != "" {
			cmd.Printf("      Category: %s\n", results[i].Category)
		}
		cmd.Printf("      %s\n", snippet(results[i].Content, 120))
		cmd.Println()
	}
	return nil
}

// defaultPartition returns the configured default partition, falling
// back to the built-in when config has not been loaded.
func defaultPartition() string {
	if settings != nil {
		return settings.DefaultPartition()
	}
	return configfile.DefaultPartitionName
}

// snippet shortens s to max bytes on a rune boundary.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
