package pipeline

import (
	"regexp"
	"strings"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// Ensure SplitInlineBullets implements the interface.
var _ Stage = (*SplitInlineBullets)(nil)

var (
	colonDashRe = regexp.MustCompile(`:\s*-\s*`)
	dashSplitRe = regexp.MustCompile(`\s*-\s*`)
)

// SplitInlineBullets repairs single-paragraph content where bullet
// items were flattened onto one line, as in "Inspect daily: - check
// straps - check buckles", turning the items into sentences after the
// colon. Multi-line content is left alone.
type SplitInlineBullets struct{}

// NewSplitInlineBullets creates the split-inline-bullets stage.
func NewSplitInlineBullets() *SplitInlineBullets {
	return &SplitInlineBullets{}
}

// Name returns the stage identifier.
func (s *SplitInlineBullets) Name() string {
	return "split-inline-bullets"
}

// Backup returns the backup naming for this stage.
func (s *SplitInlineBullets) Backup() (string, bool) {
	return "inlinefix", true
}

// Apply rewrites flattened bullet runs in each record.
func (s *SplitInlineBullets) Apply(_ string, entries []domain.Entry) ([]domain.Entry, bool, error) {
	changed := false

	for i := range entries {
		e := &entries[i]
		if fixed := SplitInline(e.Content); fixed != e.Content {
			e.Content = fixed
			changed = true
		}
	}

	return entries, changed, nil
}

// SplitInline rewrites a single-paragraph string whose bullet items
// were joined inline with dashes. Content containing a newline is
// returned unchanged.
func SplitInline(paragraph string) string {
	p := normalizeNewlines(paragraph)
	if strings.Contains(p, "\n") {
		return paragraph
	}

	if loc := colonDashRe.FindStringIndex(p); loc != nil {
		head := strings.TrimSpace(p[:loc[0]])
		tail := strings.TrimSpace(p[loc[1]:])
		return head + ": " + strings.Join(itemsToSentences(dashSplitRe.Split(tail, -1)), " ")
	}

	if strings.Count(p, " - ") >= 1 {
		var parts []string
		for _, part := range strings.Split(p, " - ") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 1 {
			return parts[0] + ": " + strings.Join(itemsToSentences(parts[1:]), " ")
		}
	}

	return paragraph
}

func itemsToSentences(items []string) []string {
	sentences := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !endsSentence(item) {
			item += "."
		}
		sentences = append(sentences, capitalize(item))
	}
	return sentences
}
