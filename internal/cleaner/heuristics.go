package cleaner

import (
	"regexp"
	"strings"
	"unicode"
)

// Heuristic predicates shared by the cleaner and the chunker. Each
// predicate is a single-purpose pure function so the individual rules
// stay independently testable.

var (
	chapterHeadingRe = regexp.MustCompile(`^(?i:chapter\s+)?\d+[.:]\s+[A-Z]`)
	sectionNumberRe  = regexp.MustCompile(`^\d+\.\d+\s+[A-Z]`)
	allCapsWordRe    = regexp.MustCompile(`\b[A-Z]{2,}\b`)

	listMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`^[-*\x{2022}]\s+`), // dash, asterisk, bullet
		regexp.MustCompile(`^\d+[.)]\s+`),      // numbered lists
		regexp.MustCompile(`^[a-zA-Z][.)]\s+`), // lettered lists
	}

	topicChangeRes = []*regexp.Regexp{
		regexp.MustCompile(`^(however|meanwhile|in contrast|on the other hand|alternatively)`),
		regexp.MustCompile(`^(step \d+|phase \d+|part \d+)`),
		regexp.MustCompile(`^(important|note|warning|caution|remember)`),
	}
)

// IsSectionHeader reports whether a paragraph looks like a section
// header. A paragraph qualifies when any of these hold:
//
//   - short and fully upper-case, like "FALL PROTECTION"
//   - a numbered heading, like "1. Introduction" or "Chapter 1: Basics"
//   - a section number, like "1.1 Safety Procedures"
//   - a short run of 2-8 capitalized words not ending in a period
//   - short with at least two all-caps words, like "OSHA FALL PROTECTION"
func IsSectionHeader(text string) bool {
	text = strings.TrimSpace(text)

	if len(text) < 100 && len(text) > 5 && isUpper(text) {
		return true
	}

	if chapterHeadingRe.MatchString(text) {
		return true
	}

	if sectionNumberRe.MatchString(text) {
		return true
	}

	if len(text) < 100 {
		words := strings.Fields(text)
		if len(words) >= 2 && len(words) <= 8 && !strings.HasSuffix(text, ".") {
			capitalized := 0
			for _, w := range words {
				r := []rune(w)[0]
				if unicode.IsUpper(r) {
					capitalized++
				}
			}
			if capitalized == len(words) {
				return true
			}
		}
	}

	if len(text) < 100 && len(allCapsWordRe.FindAllString(text, -1)) >= 2 {
		return true
	}

	return false
}

// IsListItem reports whether a paragraph starts with a list marker:
// a dash, asterisk or bullet, a numbered marker like "3." or "3)",
// or a single-letter marker like "a)".
func IsListItem(text string) bool {
	text = strings.TrimSpace(text)
	for _, re := range listMarkerRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IsTopicChange reports whether the next paragraph opens with a
// discourse marker that signals a topic shift, such as "however",
// "step 2" or "warning".
func IsTopicChange(next string) bool {
	next = strings.ToLower(strings.TrimSpace(next))
	for _, re := range topicChangeRes {
		if re.MatchString(next) {
			return true
		}
	}
	return false
}

// isUpper mirrors a case check over cased characters only: at least
// one letter must be present and no letter may be lower-case.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
