package driven

import "github.com/atlas-safety/safekb-cli/internal/core/domain"

// Chunker splits cleaned document text into store-ready chunks.
type Chunker interface {
	// Chunk splits text into titled chunks, each tagged with the
	// given partition.
	Chunk(text, partition string) []domain.Chunk
}
