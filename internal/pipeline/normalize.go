package pipeline

import (
	"regexp"
	"strings"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// Ensure NormalizeFields implements the interface.
var _ Stage = (*NormalizeFields)(nil)

var keywordWordRe = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// NormalizeFields brings every record up to the canonical field shape:
// a lowercased, underscore-separated category tag, a materialised
// source field, title-derived keywords, and trimmed content lines.
type NormalizeFields struct{}

// NewNormalizeFields creates the normalize-fields stage.
func NewNormalizeFields() *NormalizeFields {
	return &NormalizeFields{}
}

// Name returns the stage identifier.
func (s *NormalizeFields) Name() string {
	return "normalize-fields"
}

// Backup returns the backup naming for this stage.
func (s *NormalizeFields) Backup() (string, bool) {
	return "", true
}

// Apply normalises each record in place.
func (s *NormalizeFields) Apply(_ string, entries []domain.Entry) ([]domain.Entry, bool, error) {
	changed := false

	for i := range entries {
		e := &entries[i]

		if tag := NormalizeTag(e.Category); tag != e.Category {
			e.Category = tag
			changed = true
		}

		if e.Source == nil {
			empty := ""
			e.Source = &empty
			changed = true
		}

		if e.Keywords == nil {
			if kws := KeywordsFromTitle(e.Title); len(kws) > 0 {
				e.Keywords = kws
				changed = true
			}
		}

		if trimmed := trimContentLines(e.Content); trimmed != e.Content {
			e.Content = trimmed
			changed = true
		}
	}

	return entries, changed, nil
}

// NormalizeTag canonicalises an internal category tag: trimmed,
// lowercased, with hyphens and spaces replaced by underscores.
func NormalizeTag(tag string) string {
	if tag == "" {
		return ""
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.ReplaceAll(tag, "-", "_")
	return strings.ReplaceAll(tag, " ", "_")
}

// KeywordsFromTitle derives search keywords from a title: every word
// of four or more letters, lowercased, deduplicated in first-seen
// order.
func KeywordsFromTitle(title string) []string {
	words := keywordWordRe.FindAllString(strings.ToLower(title), -1)

	seen := make(map[string]struct{}, len(words))
	var out []string
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func trimContentLines(content string) string {
	lines := strings.Split(content, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSpace(ln)
	}
	return strings.Join(lines, "\n")
}
