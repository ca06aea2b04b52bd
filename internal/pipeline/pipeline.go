// Package pipeline implements the batch normalisation stages that
// operate directly on persisted partition files. Each stage is
// idempotent: running the full ordered sequence twice leaves the
// files untouched on the second pass.
//
// Stages that rewrite a file first copy it into the backups/
// subdirectory with a stage-specific suffix, so every destructive
// transform can be traced back to the state it started from.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/atlas-safety/safekb-cli/internal/adapters/driven/storage/jsonfile"
	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/logger"
)

// Stage transforms the records of a single partition file.
type Stage interface {
	// Name is the stable identifier used to select the stage.
	Name() string

	// Backup reports whether the stage copies the file aside before
	// rewriting it, and the suffix to embed in the backup name.
	Backup() (suffix string, ok bool)

	// Apply transforms the records of the partition file at path and
	// reports whether anything changed. Apply must not write to disk;
	// the Runner owns persistence.
	Apply(path string, entries []domain.Entry) ([]domain.Entry, bool, error)
}

// AllStages returns the full stage sequence in canonical run order.
func AllStages() []Stage {
	return []Stage{
		NewNormalizeFields(),
		NewReformatBullets(),
		NewSplitInlineBullets(),
		NewRestoreFromBackup(),
		NewCleanSearchFields(),
	}
}

// StageNames returns the names of the full sequence in run order.
func StageNames() []string {
	stages := AllStages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return names
}

// StageByName resolves a stage identifier to its implementation.
func StageByName(name string) (Stage, error) {
	for _, s := range AllStages() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown pipeline stage %q", domain.ErrInvalidInput, name)
}

// Result summarises a pipeline run.
type Result struct {
	// FilesChanged counts file rewrites, one per stage and file.
	FilesChanged int

	// FilesSkipped counts files a stage could not process, usually
	// because the JSON failed to parse.
	FilesSkipped int
}

// Runner applies stages to every partition file in a directory.
type Runner struct {
	dir string
	now func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the backup timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner over the partition files in dir.
func New(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies each stage, in order, to every partition file. A file
// that cannot be read or parsed is reported and skipped; the run
// continues with the remaining files.
func (r *Runner) Run(stages ...Stage) (Result, error) {
	var result Result

	files, err := r.partitionFiles()
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		return result, fmt.Errorf("%w: no %s files in %s", domain.ErrNotFound, "*"+jsonfile.PartitionFileSuffix, r.dir)
	}

	for _, stage := range stages {
		logger.Stage(stage.Name())
		for _, path := range files {
			changed, err := r.runStageOnFile(stage, path)
			if err != nil {
				logger.Warn("skipping %s: %v", filepath.Base(path), err)
				result.FilesSkipped++
				continue
			}
			if changed {
				result.FilesChanged++
			}
		}
	}

	return result, nil
}

// RunAll applies the full canonical sequence.
func (r *Runner) RunAll() (Result, error) {
	return r.Run(AllStages()...)
}

func (r *Runner) runStageOnFile(stage Stage, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	out, changed, err := stage.Apply(path, entries)
	if err != nil {
		return false, err
	}
	if !changed {
		logger.Debug("no changes for %s", filepath.Base(path))
		return false, nil
	}

	if suffix, ok := stage.Backup(); ok {
		backup, err := jsonfile.BackupFile(path, suffix, r.now())
		if err != nil {
			return false, err
		}
		logger.Debug("backed up %s to %s", filepath.Base(path), filepath.Base(backup))
	}

	encoded, err := jsonfile.EncodeEntries(out)
	if err != nil {
		return false, err
	}
	if err := jsonfile.WriteFileAtomic(path, encoded, 0o644); err != nil {
		return false, err
	}

	logger.Info("updated %s", filepath.Base(path))
	return true, nil
}

func (r *Runner) partitionFiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*"+jsonfile.PartitionFileSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
