package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
	"github.com/atlas-safety/safekb-cli/internal/dedupe"
)

// Ensure KnowledgeStore implements the interface.
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore is an in-memory implementation of
// driven.KnowledgeStore, used by tests and throwaway runs. It applies
// the same validation and duplicate rejection as the file-backed
// store but persists nothing.
type KnowledgeStore struct {
	mu       sync.RWMutex
	entries  map[string][]domain.Entry
	imports  map[string]domain.ImportRecord
	hashes   map[string]map[string]struct{}
	detector *dedupe.Detector
}

// NewKnowledgeStore creates a new in-memory knowledge store.
func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{
		entries:  make(map[string][]domain.Entry),
		imports:  make(map[string]domain.ImportRecord),
		hashes:   make(map[string]map[string]struct{}),
		detector: dedupe.NewDetector(),
	}
}

// Load returns the records of a partition.
func (s *KnowledgeStore) Load(partition string) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.entries[partition]
	if !ok {
		return nil, fmt.Errorf("%w: partition %q", domain.ErrNotFound, partition)
	}
	out := make([]domain.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Save replaces the records of a partition.
func (s *KnowledgeStore) Save(partition string, entries []domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]domain.Entry, len(entries))
	copy(stored, entries)
	s.entries[partition] = stored
	return nil
}

// Append validates and deduplicates chunks, then adds the survivors.
func (s *KnowledgeStore) Append(partition string, chunks []domain.Chunk, skipDuplicates bool) (domain.AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result domain.AppendResult

	existing := s.entries[partition]
	existingContents := make([]string, len(existing))
	for i, e := range existing {
		existingContents[i] = e.Content
	}

	hashes := s.hashes[partition]
	if hashes == nil {
		hashes = make(map[string]struct{})
		s.hashes[partition] = hashes
	}

	var acceptedContents []string
	for _, chunk := range chunks {
		entry := chunk.Entry()

		if !entry.Valid() {
			result.Skipped++
			continue
		}
		if skipDuplicates {
			if s.detector.IsDuplicate(entry.Content, existingContents, hashes) ||
				s.detector.IsDuplicate(entry.Content, acceptedContents, nil) {
				result.Skipped++
				continue
			}
		}

		s.entries[partition] = append(s.entries[partition], entry)
		acceptedContents = append(acceptedContents, entry.Content)
		hashes[dedupe.Fingerprint(entry.Content)] = struct{}{}
		result.Added++
	}

	return result, nil
}

// Search returns records whose title or content contains query,
// case-insensitively.
func (s *KnowledgeStore) Search(partition, query string, limit int) ([]domain.Entry, error) {
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
func (s *KnowledgeStore) Stats(partition string) (domain.Stats, error) {
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

// CleanAndDeduplicate drops invalid and duplicate records.
func (s *KnowledgeStore) CleanAndDeduplicate(partition string) (int, error) {
	entries, err := s.Load(partition)
	if err != nil {
		return 0, err
	}

	type key struct{ title, content string }
	seen := make(map[key]struct{}, len(entries))
	unique := make([]domain.Entry, 0, len(entries))

	for _, entry := range entries {
		if !entry.Valid() {
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

	s.mu.Lock()
	s.entries[partition] = unique
	s.mu.Unlock()

	return len(unique), nil
}

// Partitions lists all partitions, sorted.
func (s *KnowledgeStore) Partitions() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partitions := make([]string, 0, len(s.entries))
	for p := range s.entries {
		partitions = append(partitions, p)
	}
	sort.Strings(partitions)
	return partitions, nil
}

// EntriesByTag filters a partition by internal category tag.
func (s *KnowledgeStore) EntriesByTag(partition, tag string) ([]domain.Entry, error) {
	entries, err := s.Load(partition)
	if err != nil {
		return nil, err
	}

	var out []domain.Entry
	for _, entry := range entries {
		if entry.Category == tag {
			out = append(out, entry)
		}
	}
	return out, nil
}

// IsImported reports whether a source file was ingested before.
func (s *KnowledgeStore) IsImported(filename string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.imports[filename]
	return ok, nil
}

// RecordImport marks a source file as ingested.
func (s *KnowledgeStore) RecordImport(filename, category string, chunksAdded int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.imports[filename] = domain.ImportRecord{
		Category:    category,
		ChunksAdded: chunksAdded,
		ImportedAt:  time.Now().UTC(),
	}
	return nil
}
