package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/atlas-safety/safekb-cli/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [stage...]",
	Short: "Run normalization stages over the knowledge base",
	Long: `Runs content normalization stages over every partition file.
With no arguments all stages run in their canonical order:

  ` + strings.Join(pipeline.StageNames(), "\n  ") + `

Name one or more stages to run just those. Each stage that changes a
file writes a timestamped backup first, except restore-from-backup.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if pipelineRunner == nil {
		return errors.New("pipeline runner not configured")
	}

	var (
		result pipeline.Result
		err    error
	)
	if len(args) == 0 {
		result, err = pipelineRunner.RunAll()
	} else {
		stages := make([]pipeline.Stage, 0, len(args))
		for _, name := range args {
			stage, stageErr := pipeline.StageByName(name)
			if stageErr != nil {
				return stageErr
			}
			stages = append(stages, stage)
		}
		result, err = pipelineRunner.Run(stages...)
	}
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Pipeline complete: %d files changed, %d skipped\n",
		result.FilesChanged, result.FilesSkipped)
	return nil
}
