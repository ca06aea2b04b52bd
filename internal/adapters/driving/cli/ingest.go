package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driving"
)

var (
	ingestPartition string
	ingestForce     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Extracts text from a document, cleans it, splits it into chunks and
stores the chunks in the knowledge base. Supports .txt, .docx and .pdf
files. By default each chunk is classified into a partition by its
content; use --partition to pin the whole document to one partition.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestPartition, "partition", "p", driving.PartitionAuto, "target partition, or \"auto\" to classify per chunk")
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "re-ingest a previously imported file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]

	// Progress is only reported by the concrete service; tests may
	// inject one without it.
	if ps, ok := ingestService.(interface{ SetProgress(func(done, total int)) }); ok {
		var bar *progressbar.ProgressBar
		ps.SetProgress(func(done, total int) {
			if bar == nil {
				bar = newProgressBar(cmd, total, "classifying chunks")
			}
			_ = bar.Set(done)
		})
	}

	report, err := ingestService.Ingest(context.Background(), path, ingestPartition, ingestForce)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyImported) {
			return fmt.Errorf("%w (use --force to re-ingest)", err)
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println()
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Ingested %s\n", report.Filename)
	cmd.Printf("  %d chunks added, %d duplicates skipped\n", report.ChunksAdded, report.DuplicatesSkipped)

	partitions := make([]string, 0, len(report.Partitions))
	for p := range report.Partitions {
		partitions = append(partitions, p)
	}
	sort.Strings(partitions)
	for _, p := range partitions {
		cmd.Printf("  %s: %d\n", p, report.Partitions[p])
	}

	return nil
}

func newProgressBar(cmd *cobra.Command, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
