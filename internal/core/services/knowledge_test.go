package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-safety/safekb-cli/internal/adapters/driven/storage/memory"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

func seededKnowledgeService(t *testing.T) *KnowledgeService {
	t.Helper()
	store := memory.NewKnowledgeStore()
	require.NoError(t, store.Save("fall", []domain.Entry{
		{Title: "Harness Inspection", Content: "Inspect all fall protection equipment before each use.", Category: "equipment"},
		{Title: "Harness Inspection", Content: "Inspect all fall protection equipment before each use.", Category: "equipment"},
		{Title: "Rescue Plans", Content: "A written rescue plan is required on every site.", Category: "procedures"},
	}))
	require.NoError(t, store.Save("electrical", nil))
	return NewKnowledgeService(store)
}

func TestKnowledgeService_Search(t *testing.T) {
	svc := seededKnowledgeService(t)

	results, err := svc.Search("fall", "rescue", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Rescue Plans", results[0].Title)
}

func TestKnowledgeService_Stats(t *testing.T) {
	svc := seededKnowledgeService(t)

	stats, err := svc.Stats("fall")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.Categories["equipment"])
}

func TestKnowledgeService_Partitions(t *testing.T) {
	svc := seededKnowledgeService(t)

	partitions, err := svc.Partitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"electrical", "fall"}, partitions)
}

func TestKnowledgeService_EntriesByTag(t *testing.T) {
	svc := seededKnowledgeService(t)

	entries, err := svc.EntriesByTag("fall", "procedures")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestKnowledgeService_Deduplicate(t *testing.T) {
	svc := seededKnowledgeService(t)

	count, err := svc.Deduplicate("fall")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKnowledgeService_MissingPartition(t *testing.T) {
	svc := seededKnowledgeService(t)

	_, err := svc.Search("struckby", "query", 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
