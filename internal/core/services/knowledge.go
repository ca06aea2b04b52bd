package services

import (
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driving"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// KnowledgeService exposes read and maintenance operations over the
// knowledge store.
type KnowledgeService struct {
	store driven.KnowledgeStore
}

// NewKnowledgeService creates a new knowledge service.
func NewKnowledgeService(store driven.KnowledgeStore) *KnowledgeService {
	return &KnowledgeService{store: store}
}

// Search returns records matching query in a partition.
func (s *KnowledgeService) Search(partition, query string, limit int) ([]domain.Entry, error) {
	return s.store.Search(partition, query, limit)
}

// Stats summarises a partition.
func (s *KnowledgeService) Stats(partition string) (domain.Stats, error) {
	return s.store.Stats(partition)
}

// Partitions lists all partitions present in the store.
func (s *KnowledgeService) Partitions() ([]string, error) {
	return s.store.Partitions()
}

// EntriesByTag filters a partition by internal category tag.
func (s *KnowledgeService) EntriesByTag(partition, tag string) ([]domain.Entry, error) {
	return s.store.EntriesByTag(partition, tag)
}

// Deduplicate removes invalid and duplicate records from a partition
// and returns the final count.
func (s *KnowledgeService) Deduplicate(partition string) (int, error) {
	return s.store.CleanAndDeduplicate(partition)
}
