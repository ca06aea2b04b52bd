package domain

import (
	"strings"
	"time"
)

// Entry represents a persisted knowledge base record.
// It is the canonical representation after ingestion.
type Entry struct {
	// Title is the human-readable title, usually inferred from a
	// section header during chunking.
	Title string `json:"title"`

	// Content is the cleaned text content of this record.
	Content string `json:"content"`

	// Category is the internal topical tag within a partition
	// (e.g. "equipment", "procedures"). It is distinct from the
	// partition name the record is stored under.
	Category string `json:"category"`

	// Source names the document the record was ingested from.
	// A nil pointer means the field has never been set; the
	// normalize-fields pipeline stage materialises it as "".
	Source *string `json:"source,omitempty"`

	// Keywords are derived search terms. Absent until the
	// normalize-fields stage generates them from the title.
	Keywords []string `json:"keywords,omitempty"`

	// SearchText is a lowercase, stopword-free rendering of Content
	// maintained by the clean-search-fields stage.
	SearchText string `json:"search_text,omitempty"`
}

// Valid reports whether the entry carries all required fields.
// Title, Content and Category must be non-empty after trimming.
func (e Entry) Valid() bool {
	return strings.TrimSpace(e.Title) != "" &&
		strings.TrimSpace(e.Content) != "" &&
		strings.TrimSpace(e.Category) != ""
}

// Chunk is a transient title+content unit produced by the chunker,
// prior to partition assignment and persistence.
type Chunk struct {
	// Title is inferred from the most recent section header.
	Title string

	// Content is the chunk body text.
	Content string

	// Category is the partition the chunk was produced for. It
	// becomes the Entry's internal category tag on append.
	Category string
}

// Entry converts the chunk into a persistable Entry.
func (c Chunk) Entry() Entry {
	return Entry{
		Title:    c.Title,
		Content:  c.Content,
		Category: c.Category,
	}
}

// ImportRecord tracks a previously ingested source file.
type ImportRecord struct {
	// Category is the partition the file was imported into, or
	// "mixed" if its chunks landed in more than one partition.
	Category string `json:"category"`

	// ChunksAdded is the number of records the import produced.
	ChunksAdded int `json:"chunks_added"`

	// ImportedAt is when the import was recorded.
	ImportedAt time.Time `json:"imported_at"`
}

// Stats summarises a knowledge base partition.
type Stats struct {
	// TotalEntries is the number of records in the partition.
	TotalEntries int

	// Categories counts records per internal category tag.
	Categories map[string]int

	// AvgContentLength is the mean content length in characters.
	AvgContentLength int

	// TotalContentLength is the summed content length in characters.
	TotalContentLength int
}

// AppendResult reports the outcome of an append operation.
type AppendResult struct {
	// Added is the number of records actually stored.
	Added int

	// Skipped is the number of candidates rejected as duplicates
	// or invalid.
	Skipped int
}
