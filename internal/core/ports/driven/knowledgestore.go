package driven

import (
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// KnowledgeStore persists knowledge base partitions as ordered record
// collections plus import metadata. Backed by JSON files, one per
// partition.
type KnowledgeStore interface {
	// Load returns all records of a partition in stored order.
	// Returns domain.ErrNotFound if the partition file is absent.
	Load(partition string) ([]domain.Entry, error)

	// Save overwrites a partition with the given records, preserving
	// list order.
	Save(partition string, entries []domain.Entry) error

	// Append validates and deduplicates candidate chunks against the
	// existing partition and the batch itself, then appends the
	// survivors. Skips are counted, never hidden.
	Append(partition string, chunks []domain.Chunk, skipDuplicates bool) (domain.AppendResult, error)

	// Search returns records whose title or content contains query,
	// case-insensitively, in partition order. A limit of 0 means
	// unlimited.
	Search(partition, query string, limit int) ([]domain.Entry, error)

	// Stats summarises a partition.
	Stats(partition string) (domain.Stats, error)

	// CleanAndDeduplicate drops invalid records and exact
	// title+content duplicates, keeping first occurrences. Returns
	// the final record count.
	CleanAndDeduplicate(partition string) (int, error)

	// Partitions lists all partitions present in the store.
	Partitions() ([]string, error)

	// EntriesByTag returns a partition's records filtered by their
	// internal category tag.
	EntriesByTag(partition, tag string) ([]domain.Entry, error)

	// IsImported reports whether a source file was ingested before.
	IsImported(filename string) (bool, error)

	// RecordImport records a completed source-file ingestion.
	RecordImport(filename, category string, chunksAdded int) error
}
