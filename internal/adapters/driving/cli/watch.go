package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driving"
	"github.com/atlas-safety/safekb-cli/internal/extractors"
	"github.com/atlas-safety/safekb-cli/internal/watch"
)

var watchPartition string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest new documents",
	Long: `Watches a directory for new or updated documents and ingests each
one as it settles. Already imported files are skipped. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchPartition, "partition", "p", driving.PartitionAuto, "target partition, or \"auto\" to classify per chunk")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	dir := args[0]
	ingest := func(ctx context.Context, path string) error {
		report, err := ingestService.Ingest(ctx, path, watchPartition, false)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyImported) {
				return nil
			}
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s: %d chunks added, %d duplicates skipped\n",
			filepath.Base(path), report.ChunksAdded, report.DuplicatesSkipped)
		return nil
	}

	watcher, err := watch.New(dir, extractors.DefaultRegistry().Extensions(), ingest)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for documents. Press Ctrl+C to stop.\n", dir)
	if err := watcher.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
