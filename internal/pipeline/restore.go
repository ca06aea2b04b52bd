package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/atlas-safety/safekb-cli/internal/adapters/driven/storage/jsonfile"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/logger"
)

// Ensure RestoreFromBackup implements the interface.
var _ Stage = (*RestoreFromBackup)(nil)

var (
	numericRangeRe = regexp.MustCompile(`\b\d+[-–—]\d+\b`)
	rangeDashRe    = regexp.MustCompile(`[-–—]`)
	hyphenTokenRe  = regexp.MustCompile(`\b\w+-\w+\b`)
)

// RestoreFromBackup undoes punctuation damage earlier stages can
// inflict on hyphenated tokens and numeric ranges. For each record,
// matched by title, it looks up the newest backup of the same file
// and restores any hyphenated form the current content has split
// apart, e.g. "10. 15" back to "10-15" or "self. Esteem" back to
// "self-esteem".
//
// Restoration is best effort: only the single newest backup is
// consulted, so damage spanning multiple rewrites may not be fully
// recovered. With no backup present the stage is a no-op.
type RestoreFromBackup struct{}

// NewRestoreFromBackup creates the restore-from-backup stage.
func NewRestoreFromBackup() *RestoreFromBackup {
	return &RestoreFromBackup{}
}

// Name returns the stage identifier.
func (s *RestoreFromBackup) Name() string {
	return "restore-from-backup"
}

// Backup returns the backup naming for this stage. Restoration never
// rewrites anything a backup did not already capture, so it takes no
// backup of its own.
func (s *RestoreFromBackup) Backup() (string, bool) {
	return "", false
}

// Apply restores hyphenation in each record from the newest backup.
func (s *RestoreFromBackup) Apply(path string, entries []domain.Entry) ([]domain.Entry, bool, error) {
	backupPath, err := jsonfile.LatestBackup(path)
	if err != nil {
		return entries, false, err
	}
	if backupPath == "" {
		logger.Debug("no backup for %s; nothing to restore", filepath.Base(path))
		return entries, false, nil
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return entries, false, err
	}
	var reference []domain.Entry
	if err := json.Unmarshal(data, &reference); err != nil {
		return entries, false, fmt.Errorf("%w: backup %s: %v", domain.ErrParse, filepath.Base(backupPath), err)
	}

	byTitle := make(map[string]domain.Entry, len(reference))
	for _, e := range reference {
		byTitle[e.Title] = e
	}

	changed := false
	for i := range entries {
		ref, ok := byTitle[entries[i].Title]
		if !ok {
			continue
		}
		if restored, didRestore := restoreSplits(entries[i].Content, ref.Content); didRestore {
			entries[i].Content = restored
			changed = true
		}
	}

	if changed {
		logger.Info("restored hyphenation in %s from %s", filepath.Base(path), filepath.Base(backupPath))
	}
	return entries, changed, nil
}

// restoreSplits replaces split renderings of backup's numeric ranges
// and hyphenated tokens in current with the original hyphenated form.
func restoreSplits(current, backup string) (string, bool) {
	changed := false

	for _, match := range numericRangeRe.FindAllString(backup, -1) {
		split := rangeDashRe.ReplaceAllString(match, ". ")
		if strings.Contains(current, split) {
			current = strings.ReplaceAll(current, split, match)
			changed = true
		}
		spaced := strings.ReplaceAll(match, "-", " - ")
		if strings.Contains(current, spaced) {
			current = strings.ReplaceAll(current, spaced, match)
			changed = true
		}
	}

	for _, token := range hyphenTokens(backup) {
		parts := strings.Split(token, "-")
		if len(parts) != 2 {
			continue
		}
		a, b := parts[0], parts[1]
		candidates := []string{
			a + ". " + b,
			a + ". " + capitalizeWord(b),
			a + " " + b,
			a + " . " + b,
		}
		for _, c := range candidates {
			if strings.Contains(current, c) {
				current = strings.ReplaceAll(current, c, token)
				changed = true
			}
		}
	}

	return current, changed
}

// hyphenTokens returns the unique word-hyphen-word tokens of s in
// first-seen order.
func hyphenTokens(s string) []string {
	matches := hyphenTokenRe.FindAllString(s, -1)

	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// capitalizeWord upper-cases the first rune and lower-cases the rest.
func capitalizeWord(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
