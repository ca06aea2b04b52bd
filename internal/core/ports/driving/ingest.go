package driving

import "context"

// PartitionAuto asks the ingest service to classify each chunk into
// a partition individually instead of pinning the whole document.
const PartitionAuto = "auto"

// IngestReport summarises one document ingestion.
type IngestReport struct {
	// Filename is the base name of the ingested file.
	Filename string

	// Partitions maps each partition that received chunks to the
	// number of records actually added there.
	Partitions map[string]int

	// ChunksAdded is the total number of records stored.
	ChunksAdded int

	// DuplicatesSkipped is the total number of rejected candidates.
	DuplicatesSkipped int
}

// IngestService runs the document ingestion pipeline:
// extract, clean, chunk, classify, append.
type IngestService interface {
	// Ingest processes one document file into the knowledge store.
	// A partition of "auto" classifies each chunk individually;
	// any other value pins every chunk to that partition.
	// Returns domain.ErrAlreadyImported for a previously ingested
	// file unless force is set.
	Ingest(ctx context.Context, path, partition string, force bool) (*IngestReport, error)
}
