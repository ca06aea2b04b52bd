package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var partitionsCmd = &cobra.Command{
	Use:   "partitions",
	Short: "List knowledge base partitions",
	Args:  cobra.NoArgs,
	RunE:  runPartitions,
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
}

func runPartitions(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
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
		cmd.Println(p)
	}
	return nil
}
