package file

import (
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
	"github.com/atlas-safety/safekb-cli/internal/dedupe"
	"github.com/atlas-safety/safekb-cli/internal/postprocessors/chunker"
)

// Configuration keys.
const (
	KeyKBDir               = "kb_dir"
	KeyDefaultPartition    = "default_partition"
	KeyChunkMinSize        = "chunk.min_size"
	KeyChunkTargetSize     = "chunk.target_size"
	KeyChunkMaxSize        = "chunk.max_size"
	KeySimilarityThreshold = "dedupe.similarity_threshold"
)

// DefaultKBDir is used when no kb_dir is configured or given.
const DefaultKBDir = "knowledge_base"

// DefaultPartitionName receives documents when neither flag nor
// config names a partition.
const DefaultPartitionName = "general"

// Settings is a typed view over the configuration keys safekb uses,
// with built-in defaults for anything unset.
type Settings struct {
	store driven.ConfigStore
}

// NewSettings wraps a config store.
func NewSettings(store driven.ConfigStore) *Settings {
	return &Settings{store: store}
}

// KBDir returns the knowledge base directory.
func (s *Settings) KBDir() string {
	if dir := s.store.GetString(KeyKBDir); dir != "" {
		return dir
	}
	return DefaultKBDir
}

// DefaultPartition returns the partition used when none is named.
func (s *Settings) DefaultPartition() string {
	if p := s.store.GetString(KeyDefaultPartition); p != "" {
		return p
	}
	return DefaultPartitionName
}

// ChunkMinSize returns the minimum chunk size in characters.
func (s *Settings) ChunkMinSize() int {
	if n := s.store.GetInt(KeyChunkMinSize); n > 0 {
		return n
	}
	return chunker.DefaultMinSize
}

// ChunkTargetSize returns the preferred chunk size in characters.
func (s *Settings) ChunkTargetSize() int {
	if n := s.store.GetInt(KeyChunkTargetSize); n > 0 {
		return n
	}
	return chunker.DefaultTargetSize
}

// ChunkMaxSize returns the hard chunk size ceiling in characters.
func (s *Settings) ChunkMaxSize() int {
	if n := s.store.GetInt(KeyChunkMaxSize); n > 0 {
		return n
	}
	return chunker.DefaultMaxSize
}

// SimilarityThreshold returns the near-duplicate rejection threshold.
func (s *Settings) SimilarityThreshold() float64 {
	if t := s.store.GetFloat(KeySimilarityThreshold); t > 0 && t <= 1 {
		return t
	}
	return dedupe.DefaultThreshold
}
