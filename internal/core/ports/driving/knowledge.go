package driving

import (
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// KnowledgeService exposes read and maintenance operations over the
// knowledge store to the CLI.
type KnowledgeService interface {
	// Search returns records matching query in a partition.
	Search(partition, query string, limit int) ([]domain.Entry, error)

	// Stats summarises a partition.
	Stats(partition string) (domain.Stats, error)

	// Partitions lists all partitions present in the store.
	Partitions() ([]string, error)

	// EntriesByTag filters a partition by internal category tag.
	EntriesByTag(partition, tag string) ([]domain.Entry, error)

	// Deduplicate removes invalid and duplicate records from a
	// partition and returns the final count.
	Deduplicate(partition string) (int, error)
}
