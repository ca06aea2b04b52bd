package pipeline

import (
	"regexp"
	"slices"
	"strings"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// Ensure CleanSearchFields implements the interface.
var _ Stage = (*CleanSearchFields)(nil)

// stopwords are excluded from keywords and search text.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "in": {}, "on": {}, "at": {},
	"a": {}, "an": {}, "to": {}, "for": {}, "of": {}, "by": {},
	"with": {}, "is": {}, "are": {}, "be": {}, "as": {}, "from": {},
	"that": {}, "this": {}, "these": {}, "those": {}, "it": {},
	"its": {}, "was": {}, "were": {}, "will": {}, "can": {},
	"should": {}, "must": {}, "have": {}, "has": {}, "had": {},
}

var searchPunctRe = regexp.MustCompile(`[.,:;"()?!\[\]/\\]`)

// CleanSearchFields strips punctuation and stopwords from keywords
// and regenerates each record's search_text field from its content.
type CleanSearchFields struct{}

// NewCleanSearchFields creates the clean-search-fields stage.
func NewCleanSearchFields() *CleanSearchFields {
	return &CleanSearchFields{}
}

// Name returns the stage identifier.
func (s *CleanSearchFields) Name() string {
	return "clean-search-fields"
}

// Backup returns the backup naming for this stage.
func (s *CleanSearchFields) Backup() (string, bool) {
	return "clean", true
}

// Apply cleans keywords and refreshes search text on each record.
func (s *CleanSearchFields) Apply(_ string, entries []domain.Entry) ([]domain.Entry, bool, error) {
	changed := false

	for i := range entries {
		e := &entries[i]

		if kws := CleanKeywords(e.Keywords); !slices.Equal(kws, e.Keywords) {
			e.Keywords = kws
			changed = true
		}

		if text := SearchText(e.Content); text != e.SearchText {
			e.SearchText = text
			changed = true
		}
	}

	return entries, changed, nil
}

// SearchText renders content as a lowercase, punctuation-free,
// stopword-free token stream for fast substring search.
func SearchText(content string) string {
	s := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(content)
	s = searchPunctRe.ReplaceAllString(s, " ")
	s = strings.ToLower(s)

	var tokens []string
	for _, t := range strings.Fields(s) {
		if _, stop := stopwords[t]; !stop {
			tokens = append(tokens, t)
		}
	}
	return strings.Join(tokens, " ")
}

// CleanKeywords lowercases keywords, strips punctuation and
// stopwords, and deduplicates the result preserving order.
func CleanKeywords(keywords []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(keywords))

	for _, kw := range keywords {
		k := strings.TrimSpace(strings.ToLower(searchPunctRe.ReplaceAllString(kw, "")))
		if k == "" {
			continue
		}

		var parts []string
		for _, p := range strings.Fields(k) {
			if _, stop := stopwords[p]; !stop {
				parts = append(parts, p)
			}
		}

		joined := strings.Join(parts, " ")
		if joined == "" {
			continue
		}
		if _, ok := seen[joined]; ok {
			continue
		}
		seen[joined] = struct{}{}
		out = append(out, joined)
	}

	return out
}
