package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// Ensure ReformatBullets implements the interface.
var _ Stage = (*ReformatBullets)(nil)

var (
	bulletLineRe = regexp.MustCompile(`^[-•*]\s+`)
	paraSplitRe  = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// ReformatBullets rewrites bulleted paragraphs as prose. A paragraph
// made entirely of bullet lines becomes one paragraph of capitalised,
// period-terminated sentences; any other paragraph has its lines
// joined and whitespace collapsed.
type ReformatBullets struct{}

// NewReformatBullets creates the reformat-bullets stage.
func NewReformatBullets() *ReformatBullets {
	return &ReformatBullets{}
}

// Name returns the stage identifier.
func (s *ReformatBullets) Name() string {
	return "reformat-bullets"
}

// Backup returns the backup naming for this stage.
func (s *ReformatBullets) Backup() (string, bool) {
	return "fmt", true
}

// Apply reformats the content of each record.
func (s *ReformatBullets) Apply(_ string, entries []domain.Entry) ([]domain.Entry, bool, error) {
	changed := false

	for i := range entries {
		e := &entries[i]
		if strings.TrimSpace(e.Content) == "" {
			continue
		}
		if reformatted := BulletsToSentences(e.Content); reformatted != e.Content {
			e.Content = reformatted
			changed = true
		}
	}

	return entries, changed, nil
}

// BulletsToSentences converts bulleted paragraphs into prose
// sentences and joins the lines of every other paragraph.
func BulletsToSentences(text string) string {
	text = normalizeNewlines(text)

	var out []string
	for _, para := range paraSplitRe.Split(text, -1) {
		var lines []string
		for _, ln := range strings.Split(para, "\n") {
			if ln = strings.TrimSpace(ln); ln != "" {
				lines = append(lines, ln)
			}
		}
		if len(lines) == 0 {
			continue
		}

		if allBulletLines(lines) {
			sentences := make([]string, 0, len(lines))
			for _, ln := range lines {
				item := collapseWhitespace(bulletLineRe.ReplaceAllString(ln, ""))
				if !endsSentence(item) {
					item = strings.TrimRight(item, ".") + "."
				}
				sentences = append(sentences, capitalize(item))
			}
			out = append(out, strings.Join(sentences, " "))
			continue
		}

		joined := collapseWhitespace(strings.Join(lines, " "))
		if joined != "" && !endsSentence(joined) {
			joined += "."
		}
		out = append(out, joined)
	}

	return strings.Join(out, "\n\n")
}

func allBulletLines(lines []string) bool {
	for _, ln := range lines {
		if !bulletLineRe.MatchString(ln) {
			return false
		}
	}
	return true
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") ||
		strings.HasSuffix(s, "!") ||
		strings.HasSuffix(s, "?")
}

// capitalize upper-cases the first rune, leaving the rest untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
