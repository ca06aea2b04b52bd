// Package cleaner strips boilerplate, unwanted sections, page
// artifacts and duplicate paragraphs from raw extracted document text.
// Clean is a pure function and idempotent: cleaning already-cleaned
// text is a no-op.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/atlas-safety/safekb-cli/internal/logger"
)

// Section headers that mark the beginning of unwanted large sections.
// Everything after one of these is dropped until the next real
// content section header.
var unwantedSectionRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^table of contents$`),
	regexp.MustCompile(`(?i)^list of figures$`),
	regexp.MustCompile(`(?i)^list of tables$`),
	regexp.MustCompile(`(?i)^preface$`),
	regexp.MustCompile(`(?i)^foreword$`),
	regexp.MustCompile(`(?i)^references$`),
	regexp.MustCompile(`(?i)^bibliography$`),
	regexp.MustCompile(`(?i)^works cited$`),
	regexp.MustCompile(`(?i)^appendix`),
	regexp.MustCompile(`(?i)^appendices$`),
	regexp.MustCompile(`(?i)^endnotes$`),
	regexp.MustCompile(`(?i)^footnotes$`),
	regexp.MustCompile(`(?i)^glossary$`),
	regexp.MustCompile(`(?i)^index$`),
	regexp.MustCompile(`(?i)^acknowledgments?$`),
	regexp.MustCompile(`(?i)^about the author$`),
}

// Boilerplate phrases: a paragraph containing any of these is dropped
// wholesale unless it qualifies as a section header.
var unwantedPhraseRes = []*regexp.Regexp{
	// Boilerplate/meta content
	regexp.MustCompile(`(?i)^copyright`),
	regexp.MustCompile(`©`),
	regexp.MustCompile(`(?i)all rights reserved`),
	regexp.MustCompile(`(?i)^isbn`),
	regexp.MustCompile(`(?i)published by`),
	regexp.MustCompile(`(?i)publication date`),

	// Introductory fluff
	regexp.MustCompile(`(?i)this (book|document|guide|manual|chapter) (will|shall|aims to|is designed to)`),
	regexp.MustCompile(`(?i)in this (chapter|section), (we|you) will`),
	regexp.MustCompile(`(?i)about this (book|document|guide|manual)`),

	// Contact/promotional
	regexp.MustCompile(`(?i)for more information, (visit|see|contact)`),
	regexp.MustCompile(`(?i)visit our website`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`(?i)http://`),
	regexp.MustCompile(`(?i)https://`),
	regexp.MustCompile(`(?i)email:`),
	regexp.MustCompile(`(?i)contact us`),
	regexp.MustCompile(`@`), // email addresses

	// Legal
	regexp.MustCompile(`(?i)trademark`),
	regexp.MustCompile(`(?i)disclaimer`),
}

// Page markers, running headers and footers, matched against a
// lowercased trimmed line.
var pageMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`^page \d+`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^\d+\s*\|`),
	regexp.MustCompile(`^\|\s*\d+$`),
	regexp.MustCompile(`^page \d+ of \d+`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
	regexp.MustCompile(`^chapter \d+$`),
	regexp.MustCompile(`^section \d+\.?\d*$`),
	regexp.MustCompile(`^\d+\.\d+$`), // section numbers like "1.1"
}

var (
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	multiSpaceRe   = regexp.MustCompile(` {2,}`)
)

// Clean removes unwanted sections, boilerplate paragraphs, page
// artifacts and repeated content from raw extracted text. Steps run
// in a fixed order; each is free to be a no-op:
//
//  1. drop unwanted sections (TOC, references, appendices, ...)
//  2. drop boilerplate and artifact paragraphs
//  3. drop page markers and decorative lines, line by line
//  4. drop exact repeats of earlier paragraphs
//  5. normalise whitespace
func Clean(text string) string {
	originalLen := len(text)

	text = removeUnwantedSections(text)
	text = filterParagraphs(text)
	text = removePageMarkers(text)
	text = removeRepeatedContent(text)

	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if originalLen > 0 {
		reduction := float64(originalLen-len(text)) / float64(originalLen) * 100
		logger.Debug("cleaned text: %d -> %d chars (%.1f%% removed)", originalLen, len(text), reduction)
	}

	return text
}

// matchesUnwantedSection reports whether a paragraph is one of the
// unwanted section headers.
func matchesUnwantedSection(para string) bool {
	paraLower := strings.ToLower(strings.TrimSpace(para))
	for _, re := range unwantedSectionRes {
		if re.MatchString(paraLower) {
			return true
		}
	}
	return false
}

// removeUnwantedSections drops whole sections that carry no safety
// content. An unwanted header starts a skip region; skipping stops at
// the next paragraph recognised as a real content section header.
func removeUnwantedSections(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	kept := make([]string, 0, len(paragraphs))
	skipping := false

	for _, para := range paragraphs {
		if matchesUnwantedSection(para) {
			skipping = true
			continue
		}

		if skipping {
			if IsSectionHeader(strings.TrimSpace(para)) {
				// A real content section resumes normal keeping.
				skipping = false
				kept = append(kept, para)
			}
			continue
		}

		kept = append(kept, para)
	}

	return strings.Join(kept, "\n\n")
}

// filterParagraphs drops paragraphs containing boilerplate phrases,
// paragraphs too short to carry content, and artifact paragraphs that
// are mostly numbers or punctuation. Section headers are always kept.
func filterParagraphs(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	filtered := make([]string, 0, len(paragraphs))

	for _, para := range paragraphs {
		paraLower := strings.ToLower(para)
		paraStripped := strings.TrimSpace(para)

		unwanted := false
		for _, re := range unwantedPhraseRes {
			if re.MatchString(paraLower) {
				unwanted = true
				break
			}
		}
		if unwanted {
			continue
		}

		// Keep section headers even if short.
		if IsSectionHeader(paraStripped) {
			filtered = append(filtered, para)
			continue
		}

		// Very short paragraphs are formatting artifacts.
		if len(paraStripped) < 15 {
			continue
		}

		// Mostly punctuation or numbers.
		alpha := 0
		for _, r := range para {
			if unicode.IsLetter(r) {
				alpha++
			}
		}
		if len(para) > 30 && float64(alpha) < float64(len(para))*0.3 {
			continue
		}

		filtered = append(filtered, para)
	}

	return strings.Join(filtered, "\n\n")
}

// removePageMarkers drops page numbers, running headers/footers and
// decorative rules. It works line by line rather than paragraph by
// paragraph so that blank lines, which delimit paragraphs, survive.
func removePageMarkers(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Blank lines are paragraph separators; keep them.
		if trimmed == "" {
			cleaned = append(cleaned, line)
			continue
		}

		lineLower := strings.ToLower(trimmed)
		marker := false
		for _, re := range pageMarkerRes {
			if re.MatchString(lineLower) {
				marker = true
				break
			}
		}
		if marker {
			continue
		}

		// Very short lines are headers or footers.
		if len(trimmed) < 10 {
			continue
		}

		// Decorative rules like "========" or "--------".
		if distinctChars(trimmed) <= 3 {
			continue
		}

		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

// removeRepeatedContent drops paragraphs whose lowercased trimmed text
// exactly duplicates an earlier paragraph. Paragraphs under 30
// characters are too ambiguous to treat as true repeats and always
// survive.
func removeRepeatedContent(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	seen := make(map[string]struct{}, len(paragraphs))
	unique := make([]string, 0, len(paragraphs))

	for _, para := range paragraphs {
		key := strings.ToLower(strings.TrimSpace(para))

		if _, ok := seen[key]; ok {
			continue
		}

		if len(key) < 30 {
			unique = append(unique, para)
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, para)
	}

	return strings.Join(unique, "\n\n")
}

// distinctChars counts the distinct runes in a string.
func distinctChars(s string) int {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return len(set)
}
