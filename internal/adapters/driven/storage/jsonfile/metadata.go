package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

// MetadataFileName holds per-file import history and per-partition
// content fingerprints. Created empty on first store initialisation,
// mutated only by Append and RecordImport, never deleted.
const MetadataFileName = ".import_metadata.json"

// metadata is the persisted shape of the import tracking state.
type metadata struct {
	ImportedDocuments map[string]domain.ImportRecord `json:"imported_documents"`
	ContentHashes     map[string][]string            `json:"content_hashes"`
}

func newMetadata() *metadata {
	return &metadata{
		ImportedDocuments: make(map[string]domain.ImportRecord),
		ContentHashes:     make(map[string][]string),
	}
}

// hashSet returns the recorded fingerprints of a partition as a set.
func (m *metadata) hashSet(partition string) map[string]struct{} {
	hashes := m.ContentHashes[partition]
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}

// recordHash adds a fingerprint to a partition, ignoring repeats.
func (m *metadata) recordHash(partition, hash string) {
	for _, h := range m.ContentHashes[partition] {
		if h == hash {
			return
		}
	}
	m.ContentHashes[partition] = append(m.ContentHashes[partition], hash)
}

func (s *Store) metadataPath() string {
	return filepath.Join(s.dir, MetadataFileName)
}

// ensureMetadata creates an empty metadata file if none exists.
func (s *Store) ensureMetadata() error {
	if _, err := os.Stat(s.metadataPath()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.saveMetadata(newMetadata())
}

func (s *Store) loadMetadata() (*metadata, error) {
	data, err := os.ReadFile(s.metadataPath())
	if err != nil {
		return nil, fmt.Errorf("read import metadata: %w", err)
	}

	meta := newMetadata()
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, MetadataFileName, err)
	}
	if meta.ImportedDocuments == nil {
		meta.ImportedDocuments = make(map[string]domain.ImportRecord)
	}
	if meta.ContentHashes == nil {
		meta.ContentHashes = make(map[string][]string)
	}
	return meta, nil
}

func (s *Store) saveMetadata(meta *metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode import metadata: %w", err)
	}
	return WriteFileAtomic(s.metadataPath(), data, 0o644)
}
