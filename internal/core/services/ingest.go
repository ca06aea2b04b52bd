package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atlas-safety/safekb-cli/internal/cleaner"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driving"
	"github.com/atlas-safety/safekb-cli/internal/logger"
)

// mixedCategory is recorded when one document's chunks land in more
// than one partition.
const mixedCategory = "mixed"

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the full document ingestion pipeline: extract
// the raw text, clean it, chunk it, assign each chunk a partition,
// and append the survivors to the knowledge store.
type IngestService struct {
	store      driven.KnowledgeStore
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	classifier driven.Classifier
	progress   func(done, total int)
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store driven.KnowledgeStore,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	classifier driven.Classifier,
) *IngestService {
	return &IngestService{
		store:      store,
		extractors: extractors,
		chunker:    chunker,
		classifier: classifier,
	}
}

// SetProgress installs a per-chunk progress callback. Optional.
func (s *IngestService) SetProgress(fn func(done, total int)) {
	s.progress = fn
}

// Ingest processes one document file into the knowledge store.
func (s *IngestService) Ingest(ctx context.Context, path, partition string, force bool) (*driving.IngestReport, error) {
	filename := filepath.Base(path)

	imported, err := s.store.IsImported(filename)
	if err != nil {
		return nil, err
	}
	if imported && !force {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyImported, filename)
	}

	extractor, err := s.extractors.ForPath(path)
	if err != nil {
		return nil, err
	}

	logger.Stage("extract")
	raw, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted %d characters from %s", len(raw), filename)

	logger.Stage("clean")
	cleaned := cleaner.Clean(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("%w: no usable text in %s", domain.ErrInvalidInput, filename)
	}

	logger.Stage("chunk")
	auto := partition == driving.PartitionAuto
	chunkPartition := partition
	if auto {
		chunkPartition = ""
	}
	chunks := s.chunker.Chunk(cleaned, chunkPartition)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrInvalidInput, filename)
	}
	logger.Debug("produced %d chunks from %s", len(chunks), filename)

	if auto {
		logger.Stage("classify")
		for i := range chunks {
			chunks[i].Category = s.classifier.Classify(chunks[i].Content)
			s.reportProgress(i+1, len(chunks))
		}
	} else {
		s.reportProgress(len(chunks), len(chunks))
	}

	grouped := make(map[string][]domain.Chunk)
	for _, c := range chunks {
		grouped[c.Category] = append(grouped[c.Category], c)
	}
	targets := make([]string, 0, len(grouped))
	for p := range grouped {
		targets = append(targets, p)
	}
	sort.Strings(targets)

	logger.Stage("store")
	report := &driving.IngestReport{
		Filename:   filename,
		Partitions: make(map[string]int),
	}
	for _, p := range targets {
		res, err := s.store.Append(p, grouped[p], true)
		if err != nil {
			return nil, err
		}
		if res.Added > 0 {
			report.Partitions[p] = res.Added
		}
		report.ChunksAdded += res.Added
		report.DuplicatesSkipped += res.Skipped
	}

	category := partition
	if auto {
		if len(targets) == 1 {
			category = targets[0]
		} else {
			category = mixedCategory
		}
	}
	if err := s.store.RecordImport(filename, category, report.ChunksAdded); err != nil {
		return nil, err
	}

	logger.Info("ingested %s: %d added, %d skipped", filename, report.ChunksAdded, report.DuplicatesSkipped)
	return report, nil
}

func (s *IngestService) reportProgress(done, total int) {
	if s.progress != nil {
		s.progress(done, total)
	}
}
