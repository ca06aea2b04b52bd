package driven

import "context"

// Extractor converts a source document file into raw text. One
// implementation exists per supported format; selection is by file
// extension. Extraction failures surface as clear errors, they are
// never silently swallowed.
type Extractor interface {
	// Extensions returns the lowercased file extensions this
	// extractor handles, including the leading dot.
	Extensions() []string

	// Extract reads the file and returns its full raw text.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects an extractor for a document file.
type ExtractorRegistry interface {
	// ForPath returns the extractor for the file's extension, or
	// domain.ErrUnsupportedFormat.
	ForPath(path string) (Extractor, error)

	// Extensions lists every supported extension, sorted.
	Extensions() []string
}
