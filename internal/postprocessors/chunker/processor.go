// Package chunker splits cleaned document text into small, topically
// bounded chunks with inferred titles.
//
// Chunks are deliberately aggressive in size (200-800 characters):
// retrieval is pure keyword scoring with no semantic fallback, so an
// oversized or unfocused chunk dilutes the keyword signal of every
// topic it contains.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atlas-safety/safekb-cli/internal/cleaner"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/logger"
)

// DefaultMinSize is the default minimum chunk size in characters.
const DefaultMinSize = 200

// DefaultTargetSize is the default ideal chunk size in characters.
const DefaultTargetSize = 500

// DefaultMaxSize is the default hard maximum chunk size in characters.
const DefaultMaxSize = 800

// DefaultTitle is used for content preceding the first section header.
const DefaultTitle = "Safety Information"

// A document that collapses into one or two chunks despite holding
// this much content gets force-split in a post-pass.
const forceSplitThreshold = 2000

// Processor splits cleaned text into title-bearing chunks.
type Processor struct {
	minSize    int
	targetSize int
	maxSize    int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMinSize sets the minimum chunk size in characters.
func WithMinSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.minSize = size
		}
	}
}

// WithTargetSize sets the ideal chunk size in characters.
func WithTargetSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.targetSize = size
		}
	}
}

// WithMaxSize sets the hard maximum chunk size in characters.
func WithMaxSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
// The sizes are clamped so that max >= target >= min always holds.
func New(opts ...Option) *Processor {
	p := &Processor{
		minSize:    DefaultMinSize,
		targetSize: DefaultTargetSize,
		maxSize:    DefaultMaxSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.targetSize < p.minSize {
		p.targetSize = p.minSize
	}
	if p.maxSize < p.targetSize {
		p.maxSize = p.targetSize
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Chunk splits cleaned text into chunks for the given partition.
//
// Paragraphs accumulate into a buffer under the current title. A
// section header always flushes the buffer and becomes the next
// title. Between headers the buffer flushes at size boundaries that
// respect list structure: a list is never cut mid-stream, and the end
// of a list is a preferred cut point.
func (p *Processor) Chunk(text, partition string) []domain.Chunk {
	paragraphs := splitParagraphs(text)

	var chunks []domain.Chunk
	var buf strings.Builder
	title := DefaultTitle

	flush := func() {
		chunks = append(chunks, domain.Chunk{
			Title:    title,
			Content:  strings.TrimSpace(buf.String()),
			Category: partition,
		})
		buf.Reset()
	}

	for i, para := range paragraphs {
		if cleaner.IsSectionHeader(para) {
			// Always split at section headers. The header text
			// titles the next chunk and is not part of its body.
			if content := strings.TrimSpace(buf.String()); content != "" && len(content) >= p.minSize/2 {
				flush()
			}
			title = truncate(para, 100)
			continue
		}

		isList := cleaner.IsListItem(para)
		nextIsList := false
		if i+1 < len(paragraphs) {
			nextIsList = cleaner.IsListItem(paragraphs[i+1])
		}

		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)

		shouldSplit := false

		switch {
		case buf.Len() >= p.maxSize:
			// Hard ceiling, no exceptions.
			shouldSplit = true

		case buf.Len() >= p.targetSize:
			if i+1 < len(paragraphs) {
				next := paragraphs[i+1]
				switch {
				case cleaner.IsSectionHeader(next):
					shouldSplit = true
				case !nextIsList && !isList:
					shouldSplit = true
				case isList && !nextIsList:
					// End of a list is a clean cut point.
					shouldSplit = true
				}
			}

		case buf.Len() >= p.minSize:
			if i+1 < len(paragraphs) {
				next := paragraphs[i+1]
				if cleaner.IsSectionHeader(next) {
					shouldSplit = true
				} else if cleaner.IsTopicChange(next) && !isList {
					shouldSplit = true
				}
			}
		}

		if shouldSplit {
			flush()
		}
	}

	// Final chunk, with a lenient floor so short trailing material
	// is not silently discarded.
	if content := strings.TrimSpace(buf.String()); content != "" && len(content) >= p.minSize*2/5 {
		flush()
	}

	// A large document that produced almost no chunks means the
	// boundary heuristics never fired; force a size-based split.
	if len(chunks) <= 2 && totalContent(chunks) > forceSplitThreshold {
		logger.Warn("only %d chunks from %d chars of content, force-splitting", len(chunks), totalContent(chunks))
		chunks = p.forceSplit(chunks, partition)
	}

	if len(chunks) > 0 {
		logger.Debug("created %d chunks (avg size: %d chars)", len(chunks), totalContent(chunks)/len(chunks))
	}

	return chunks
}

// forceSplit re-walks the paragraphs of any over-sized chunk and cuts
// at the first point the target size is reached. Continuation chunks
// are titled "<original title> (Part N)".
func (p *Processor) forceSplit(chunks []domain.Chunk, partition string) []domain.Chunk {
	var out []domain.Chunk

	for _, chunk := range chunks {
		if len(chunk.Content) <= p.maxSize {
			out = append(out, chunk)
			continue
		}

		paragraphs := splitParagraphs(chunk.Content)
		var buf strings.Builder
		part := 1

		emit := func() {
			title := chunk.Title
			if part > 1 {
				title = fmt.Sprintf("%s (Part %d)", chunk.Title, part)
			}
			out = append(out, domain.Chunk{
				Title:    title,
				Content:  strings.TrimSpace(buf.String()),
				Category: partition,
			})
			part++
			buf.Reset()
		}

		for _, para := range paragraphs {
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(para)

			if buf.Len() >= p.targetSize {
				emit()
			}
		}

		if strings.TrimSpace(buf.String()) != "" {
			emit()
		}
	}

	return out
}

// splitParagraphs returns the non-empty trimmed paragraphs of text.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// truncate limits a title to n bytes, cutting on a rune boundary so a
// multi-byte character near the limit is dropped whole.
func truncate(s string, n int) string {
	if len(s) <= n {
		return strings.TrimSpace(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

// totalContent sums the content length across chunks.
func totalContent(chunks []domain.Chunk) int {
	total := 0
	for _, c := range chunks {
		total += len(c.Content)
	}
	return total
}
