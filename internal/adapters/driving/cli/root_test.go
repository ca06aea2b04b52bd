package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlas-safety/safekb-cli/internal/adapters/driven/storage/memory"
	"github.com/atlas-safety/safekb-cli/internal/classify"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/services"
	"github.com/atlas-safety/safekb-cli/internal/extractors"
	"github.com/atlas-safety/safekb-cli/internal/pipeline"
	"github.com/atlas-safety/safekb-cli/internal/postprocessors/chunker"
)

// setupTestServices wires the commands to an in-memory store seeded
// with a few records. The returned cleanup resets the package state.
func setupTestServices() func() {
	store := memory.NewKnowledgeStore()
	seed := []domain.Chunk{
		{Title: "Harness Inspection", Content: "Inspect your harness before each use. Replace worn straps.", Category: "equipment"},
		{Title: "Ladder Placement", Content: "Maintain a 4 to 1 ratio when placing extension ladders.", Category: "procedures"},
		{Title: "Guardrail Heights", Content: "Top rails must be 42 inches above the walking surface.", Category: "equipment"},
	}
	if _, err := store.Append("fall", seed, true); err != nil {
		panic(err)
	}

	kbDir, err := os.MkdirTemp("", "safekb-cli-test-*")
	if err != nil {
		panic(err)
	}

	knowledgeService = services.NewKnowledgeService(store)
	ingestService = services.NewIngestService(store, extractors.DefaultRegistry(), chunker.New(), classify.New())
	pipelineRunner = pipeline.New(kbDir)

	return func() {
		resetServices()
		os.RemoveAll(kbDir)
	}
}

// executeCommand runs the root command with args and captures output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	require.Equal(t, "safekb", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("kb-dir"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "search", "stats", "partitions", "entries", "dedupe", "pipeline", "watch", "version"} {
		require.True(t, names[want], "command %s should be registered", want)
	}
}
