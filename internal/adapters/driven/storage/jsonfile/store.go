// Package jsonfile implements the knowledge store as JSON files, one
// per partition, plus an import metadata file, all inside a single
// store directory.
//
// The store is single-writer: no locking is provided and none is
// assumed. Every write goes through a temp-file-then-rename commit so
// a crash mid-write never corrupts a canonical file.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
	"github.com/atlas-safety/safekb-cli/internal/dedupe"
	"github.com/atlas-safety/safekb-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.KnowledgeStore = (*Store)(nil)

// PartitionFileSuffix is the naming convention for partition files:
// a partition named "fall" lives in "fall_base.json".
const PartitionFileSuffix = "_base.json"

// Store is a file-based knowledge store rooted at a directory.
type Store struct {
	dir      string
	detector *dedupe.Detector
}

// Option configures the store.
type Option func(*Store)

// WithDetector overrides the duplicate detector.
func WithDetector(d *dedupe.Detector) Option {
	return func(s *Store) {
		if d != nil {
			s.detector = d
		}
	}
}

// New creates a store rooted at dir, creating the directory and an
// empty metadata file as needed.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty store directory", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &Store{
		dir:      dir,
		detector: dedupe.NewDetector(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureMetadata(); err != nil {
		return nil, fmt.Errorf("initialise import metadata: %w", err)
	}

	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// PartitionPath returns the file path backing a partition.
func (s *Store) PartitionPath(partition string) string {
	return filepath.Join(s.dir, partition+PartitionFileSuffix)
}

// Load returns all records of a partition in stored order.
func (s *Store) Load(partition string) ([]domain.Entry, error) {
	data, err := os.ReadFile(s.PartitionPath(partition))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: partition %q", domain.ErrNotFound, partition)
	}
	if err != nil {
		return nil, fmt.Errorf("read partition %q: %w", partition, err)
	}

	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: partition %q: %v", domain.ErrParse, partition, err)
	}

	return entries, nil
}

// Save overwrites a partition with the given records.
func (s *Store) Save(partition string, entries []domain.Entry) error {
	data, err := EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("encode partition %q: %w", partition, err)
	}

	if err := WriteFileAtomic(s.PartitionPath(partition), data, 0o644); err != nil {
		return fmt.Errorf("save partition %q: %w", partition, err)
	}

	logger.Debug("saved %d entries to %s", len(entries), partition+PartitionFileSuffix)
	return nil
}

// Append validates, deduplicates and appends candidate chunks.
//
// Each valid chunk is checked against the existing partition content
// (exact fingerprint, then pairwise similarity) and against chunks
// already accepted earlier in the same batch, using the same
// threshold. Accepted chunks have their fingerprints recorded in the
// import metadata.
func (s *Store) Append(partition string, chunks []domain.Chunk, skipDuplicates bool) (domain.AppendResult, error) {
	var result domain.AppendResult

	existing, err := s.Load(partition)
	if err != nil && !IsNotFound(err) {
		// A missing partition means no duplicates are possible yet;
		// anything else is fatal.
		return result, err
	}

	meta, err := s.loadMetadata()
	if err != nil {
		return result, err
	}

	existingContents := make([]string, len(existing))
	for i, e := range existing {
		existingContents[i] = e.Content
	}
	hashes := meta.hashSet(partition)

	var accepted []domain.Entry
	var acceptedContents []string

	for _, chunk := range chunks {
		entry := chunk.Entry()

		if !entry.Valid() {
			logger.Warn("skipping invalid entry %q: missing required field", entry.Title)
			result.Skipped++
			continue
		}

		if skipDuplicates {
			if s.detector.IsDuplicate(entry.Content, existingContents, hashes) {
				logger.Debug("skipping duplicate of existing content in %q", partition)
				result.Skipped++
				continue
			}
			if s.detector.IsDuplicate(entry.Content, acceptedContents, nil) {
				logger.Debug("skipping in-batch duplicate in %q", partition)
				result.Skipped++
				continue
			}
		}

		accepted = append(accepted, entry)
		acceptedContents = append(acceptedContents, entry.Content)
		meta.recordHash(partition, dedupe.Fingerprint(entry.Content))
	}

	if len(accepted) > 0 {
		if err := s.Save(partition, append(existing, accepted...)); err != nil {
			return result, err
		}
		if err := s.saveMetadata(meta); err != nil {
			return result, err
		}
	}

	result.Added = len(accepted)
	if result.Skipped > 0 {
		logger.Info("skipped %d duplicate/invalid entries for %q", result.Skipped, partition)
	}

	return result, nil
}

// Search returns records whose title or content contains query,
// case-insensitively, in partition order.
func (s *Store) Search(partition, query string, limit int) ([]domain.Entry, error) {
	entries, err := s.Load(partition)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var results []domain.Entry

	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Title), queryLower) ||
			strings.Contains(strings.ToLower(entry.Content), queryLower) {
			results = append(results, entry)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}

	return results, nil
}

// Stats summarises a partition.
func (s *Store) Stats(partition string) (domain.Stats, error) {
	entries, err := s.Load(partition)
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		TotalEntries: len(entries),
		Categories:   make(map[string]int),
	}

	for _, entry := range entries {
		tag := entry.Category
		if tag == "" {
			tag = "unknown"
		}
		stats.Categories[tag]++
		stats.TotalContentLength += len(entry.Content)
	}

	if len(entries) > 0 {
		stats.AvgContentLength = stats.TotalContentLength / len(entries)
	}

	return stats, nil
}

// CleanAndDeduplicate drops invalid records and later records whose
// lowercased, trimmed (title, content) pair duplicates an earlier
// one. The result is persisted only when something changed.
func (s *Store) CleanAndDeduplicate(partition string) (int, error) {
	entries, err := s.Load(partition)
	if err != nil {
		return 0, err
	}

	type key struct{ title, content string }
	seen := make(map[key]struct{}, len(entries))
	unique := make([]domain.Entry, 0, len(entries))

	for _, entry := range entries {
		if !entry.Valid() {
			logger.Warn("dropping invalid entry %q from %q", entry.Title, partition)
			continue
		}

		k := key{
			title:   strings.ToLower(strings.TrimSpace(entry.Title)),
			content: strings.ToLower(strings.TrimSpace(entry.Content)),
		}
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		unique = append(unique, entry)
	}

	if removed := len(entries) - len(unique); removed > 0 {
		logger.Info("removed %d duplicate/invalid entries from %q", removed, partition)
		if err := s.Save(partition, unique); err != nil {
			return 0, err
		}
	}

	return len(unique), nil
}

// Partitions lists all partitions discovered by the file naming
// convention, sorted by name.
func (s *Store) Partitions() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+PartitionFileSuffix))
	if err != nil {
		return nil, err
	}

	partitions := make([]string, 0, len(matches))
	for _, m := range matches {
		partitions = append(partitions, strings.TrimSuffix(filepath.Base(m), PartitionFileSuffix))
	}
	sort.Strings(partitions)

	return partitions, nil
}

// EntriesByTag returns a partition's records with the given internal
// category tag.
func (s *Store) EntriesByTag(partition, tag string) ([]domain.Entry, error) {
	entries, err := s.Load(partition)
	if err != nil {
		return nil, err
	}

	var matched []domain.Entry
	for _, entry := range entries {
		if entry.Category == tag {
			matched = append(matched, entry)
		}
	}

	return matched, nil
}

// IsImported reports whether a source file was ingested before.
func (s *Store) IsImported(filename string) (bool, error) {
	meta, err := s.loadMetadata()
	if err != nil {
		return false, err
	}

	_, ok := meta.ImportedDocuments[filename]
	return ok, nil
}

// RecordImport records a completed source-file ingestion.
func (s *Store) RecordImport(filename, category string, chunksAdded int) error {
	meta, err := s.loadMetadata()
	if err != nil {
		return err
	}

	meta.ImportedDocuments[filename] = domain.ImportRecord{
		Category:    category,
		ChunksAdded: chunksAdded,
		ImportedAt:  time.Now().UTC(),
	}

	if err := s.saveMetadata(meta); err != nil {
		return err
	}

	logger.Debug("recorded import: %s (%d chunks)", filename, chunksAdded)
	return nil
}

// EncodeEntries renders entries as the canonical partition file
// format: a two-space indented JSON array with unescaped non-ASCII
// and HTML characters, so content round-trips losslessly.
func EncodeEntries(entries []domain.Entry) ([]byte, error) {
	if entries == nil {
		entries = []domain.Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// IsNotFound reports whether err is the store's missing-partition
// error.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
