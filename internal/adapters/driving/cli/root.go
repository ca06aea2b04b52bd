// Package cli implements the command-line interface for safekb.
// Commands are thin adapters over the driving port services.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/atlas-safety/safekb-cli/internal/adapters/driven/config/file"
	"github.com/atlas-safety/safekb-cli/internal/adapters/driven/storage/jsonfile"
	"github.com/atlas-safety/safekb-cli/internal/classify"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driving"
	"github.com/atlas-safety/safekb-cli/internal/core/services"
	"github.com/atlas-safety/safekb-cli/internal/dedupe"
	"github.com/atlas-safety/safekb-cli/internal/extractors"
	"github.com/atlas-safety/safekb-cli/internal/logger"
	"github.com/atlas-safety/safekb-cli/internal/pipeline"
	"github.com/atlas-safety/safekb-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands run against. Wired lazily by ensureServices,
// or injected directly in tests.
var (
	ingestService    driving.IngestService
	knowledgeService driving.KnowledgeService
	pipelineRunner   *pipeline.Runner
	settings         *configfile.Settings
)

var (
	kbDirFlag   string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "safekb",
	Short: "Manage a safety knowledge base",
	Long: `safekb ingests safety documents into a JSON-file knowledge base.
Documents are extracted, cleaned, chunked and classified into topical
partitions, then served through search and maintenance commands.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&kbDirFlag, "kb-dir", "", "knowledge base directory (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureServices wires the production adapters and services unless
// they have already been injected. Commands that touch the knowledge
// base call this at the top of their RunE.
func ensureServices() error {
	if ingestService != nil && knowledgeService != nil && pipelineRunner != nil {
		return nil
	}

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settings = configfile.NewSettings(configStore)

	kbDir := kbDirFlag
	if kbDir == "" {
		kbDir = settings.KBDir()
	}

	detector := dedupe.NewDetector(dedupe.WithThreshold(settings.SimilarityThreshold()))
	store, err := jsonfile.New(kbDir, jsonfile.WithDetector(detector))
	if err != nil {
		return fmt.Errorf("open knowledge base: %w", err)
	}

	chunkProc := chunker.New(
		chunker.WithMinSize(settings.ChunkMinSize()),
		chunker.WithTargetSize(settings.ChunkTargetSize()),
		chunker.WithMaxSize(settings.ChunkMaxSize()),
	)

	ingestService = services.NewIngestService(store, extractors.DefaultRegistry(), chunkProc, classify.New())
	knowledgeService = services.NewKnowledgeService(store)
	pipelineRunner = pipeline.New(kbDir)
	return nil
}

// resetServices clears the wired services. Used by tests.
func resetServices() {
	ingestService = nil
	knowledgeService = nil
	pipelineRunner = nil
	settings = nil
}
