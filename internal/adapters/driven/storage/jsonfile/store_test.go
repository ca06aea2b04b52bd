package jsonfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func testEntries() []domain.Entry {
	return []domain.Entry{
		{Title: "Harness Inspection", Content: "Inspect all fall protection equipment before each use.", Category: "equipment"},
		{Title: "Anchor Points", Content: "Anchor points must support five thousand pounds per worker.", Category: "equipment"},
		{Title: "Rescue Plans", Content: "A written rescue plan is required wherever fall arrest systems are used.", Category: "procedures"},
	}
}

func TestNew(t *testing.T) {
	t.Run("creates directory and metadata", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "kb")
		s, err := New(dir)
		require.NoError(t, err)

		assert.DirExists(t, dir)
		assert.FileExists(t, filepath.Join(dir, MetadataFileName))
		assert.Equal(t, dir, s.Dir())
	})

	t.Run("empty directory rejected", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("existing metadata preserved", func(t *testing.T) {
		dir := t.TempDir()
		s1, err := New(dir)
		require.NoError(t, err)
		require.NoError(t, s1.RecordImport("doc1.pdf", "fall", 7))

		s2, err := New(dir)
		require.NoError(t, err)
		imported, err := s2.IsImported("doc1.pdf")
		require.NoError(t, err)
		assert.True(t, imported)
	})
}

func TestStore_LoadMissingPartition(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("fall")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_LoadMalformedJSON(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.PartitionPath("fall"), []byte("{not json"), 0o644))

	_, err := s.Load("fall")
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	entries := testEntries()

	require.NoError(t, s.Save("fall", entries))

	got, err := s.Load("fall")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestStore_SaveDoesNotEscapeContent(t *testing.T) {
	s := newTestStore(t)
	entries := []domain.Entry{
		{Title: "Clearances", Content: "Keep > 10 feet from lines rated ≤ 50 kV.", Category: "procedures"},
	}

	require.NoError(t, s.Save("electrical", entries))

	data, err := os.ReadFile(s.PartitionPath("electrical"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "> 10 feet")
	assert.Contains(t, string(data), "≤ 50 kV")

	got, err := s.Load("electrical")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestStore_Append(t *testing.T) {
	t.Run("appends valid chunks", func(t *testing.T) {
		s := newTestStore(t)

		res, err := s.Append("fall", []domain.Chunk{
			{Title: "T1", Content: "Guardrails protect workers from falls at open edges.", Category: "fall"},
			{Title: "T2", Content: "Safety nets must be installed close under the work surface.", Category: "fall"},
		}, true)
		require.NoError(t, err)

		assert.Equal(t, 2, res.Added)
		assert.Equal(t, 0, res.Skipped)

		entries, err := s.Load("fall")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("exact duplicate across calls", func(t *testing.T) {
		s := newTestStore(t)
		chunk := domain.Chunk{Title: "T", Content: "Wear a hard hat on site.", Category: "general"}

		res1, err := s.Append("general", []domain.Chunk{chunk}, true)
		require.NoError(t, err)
		assert.Equal(t, 1, res1.Added)

		res2, err := s.Append("general", []domain.Chunk{chunk}, true)
		require.NoError(t, err)
		assert.Equal(t, 0, res2.Added)
		assert.Equal(t, 1, res2.Skipped)

		entries, err := s.Load("general")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("near duplicate within batch", func(t *testing.T) {
		s := newTestStore(t)

		res, err := s.Append("general", []domain.Chunk{
			{Title: "T1", Content: "Wear a hard hat on site.", Category: "general"},
			{Title: "T2", Content: "Wear a hard hat on the site.", Category: "general"},
		}, true)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Added)
		assert.Equal(t, 1, res.Skipped)

		entries, err := s.Load("general")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Wear a hard hat on site.", entries[0].Content)
	})

	t.Run("invalid chunk skipped with count", func(t *testing.T) {
		s := newTestStore(t)

		res, err := s.Append("fall", []domain.Chunk{
			{Title: "", Content: "Content without a title should never be stored.", Category: "fall"},
			{Title: "Valid", Content: "Toe boards stop tools from falling onto workers below.", Category: "fall"},
		}, true)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Added)
		assert.Equal(t, 1, res.Skipped)

		entries, err := s.Load("fall")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Valid", entries[0].Title)
	})

	t.Run("skip duplicates disabled", func(t *testing.T) {
		s := newTestStore(t)
		chunk := domain.Chunk{Title: "T", Content: "Wear a hard hat on site.", Category: "general"}

		_, err := s.Append("general", []domain.Chunk{chunk}, false)
		require.NoError(t, err)
		res, err := s.Append("general", []domain.Chunk{chunk}, false)
		require.NoError(t, err)

		assert.Equal(t, 1, res.Added)

		entries, err := s.Load("general")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("preserves existing entries", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Save("fall", testEntries()))

		res, err := s.Append("fall", []domain.Chunk{
			{Title: "New", Content: "Ladders must extend three feet above the landing surface.", Category: "fall"},
		}, true)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Added)

		entries, err := s.Load("fall")
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, "Harness Inspection", entries[0].Title)
		assert.Equal(t, "New", entries[3].Title)
	})
}

func TestStore_Search(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("fall", testEntries()))

	t.Run("matches title", func(t *testing.T) {
		results, err := s.Search("fall", "anchor", 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Anchor Points", results[0].Title)
	})

	t.Run("matches content case-insensitively", func(t *testing.T) {
		results, err := s.Search("fall", "RESCUE PLAN", 0)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("limit truncates in order", func(t *testing.T) {
		results, err := s.Search("fall", "e", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Harness Inspection", results[0].Title)
	})

	t.Run("no matches", func(t *testing.T) {
		results, err := s.Search("fall", "forklift", 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("missing partition", func(t *testing.T) {
		_, err := s.Search("nope", "query", 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	entries := testEntries()
	require.NoError(t, s.Save("fall", entries))

	stats, err := s.Stats("fall")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.Categories["equipment"])
	assert.Equal(t, 1, stats.Categories["procedures"])

	total := 0
	for _, e := range entries {
		total += len(e.Content)
	}
	assert.Equal(t, total, stats.TotalContentLength)
	assert.Equal(t, total/3, stats.AvgContentLength)
}

func TestStore_CleanAndDeduplicate(t *testing.T) {
	s := newTestStore(t)
	entries := []domain.Entry{
		{Title: "Harness", Content: "Inspect before use.", Category: "equipment"},
		{Title: "harness", Content: "inspect before use.", Category: "equipment"},
		{Title: "", Content: "Missing title.", Category: "equipment"},
		{Title: "Ladders", Content: "Three point contact at all times.", Category: "procedures"},
	}
	require.NoError(t, s.Save("fall", entries))

	count, err := s.CleanAndDeduplicate("fall")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := s.Load("fall")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Harness", got[0].Title)
	assert.Equal(t, "Ladders", got[1].Title)
}

func TestStore_CleanAndDeduplicate_NoChanges(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("fall", testEntries()))

	before, err := os.ReadFile(s.PartitionPath("fall"))
	require.NoError(t, err)

	count, err := s.CleanAndDeduplicate("fall")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	after, err := os.ReadFile(s.PartitionPath("fall"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_Partitions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("fall", nil))
	require.NoError(t, s.Save("electrical", nil))
	require.NoError(t, s.Save("struckby", nil))

	partitions, err := s.Partitions()
	require.NoError(t, err)
	assert.Equal(t, []string{"electrical", "fall", "struckby"}, partitions)
}

func TestStore_EntriesByTag(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("fall", testEntries()))

	equipment, err := s.EntriesByTag("fall", "equipment")
	require.NoError(t, err)
	assert.Len(t, equipment, 2)

	procedures, err := s.EntriesByTag("fall", "procedures")
	require.NoError(t, err)
	assert.Len(t, procedures, 1)

	none, err := s.EntriesByTag("fall", "training")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ImportMetadata(t *testing.T) {
	s := newTestStore(t)

	imported, err := s.IsImported("doc1.pdf")
	require.NoError(t, err)
	assert.False(t, imported)

	require.NoError(t, s.RecordImport("doc1.pdf", "fall", 7))

	imported, err = s.IsImported("doc1.pdf")
	require.NoError(t, err)
	assert.True(t, imported)

	imported, err = s.IsImported("doc2.pdf")
	require.NoError(t, err)
	assert.False(t, imported)
}

func TestStore_MetadataFileShape(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RecordImport("manual.pdf", "mixed", 12))

	data, err := os.ReadFile(filepath.Join(s.Dir(), MetadataFileName))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `"imported_documents"`)
	assert.Contains(t, text, `"content_hashes"`)
	assert.Contains(t, text, `"manual.pdf"`)
	assert.Contains(t, text, `"chunks_added": 12`)
	assert.Contains(t, text, `"imported_at"`)
}

func TestStore_AppendRecordsHashes(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Append("general", []domain.Chunk{
		{Title: "T", Content: "Report every near miss to the site supervisor immediately.", Category: "general"},
	}, true)
	require.NoError(t, err)

	meta, err := s.loadMetadata()
	require.NoError(t, err)
	require.Len(t, meta.ContentHashes["general"], 1)
	assert.Len(t, meta.ContentHashes["general"][0], 64)
}

func TestWriteFileAtomic_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fall_base.json")

	require.NoError(t, WriteFileAtomic(path, []byte("[]"), 0o644))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "fall_base.json", files[0].Name())
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fall_base.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	backup, err := BackupFile(path, "fmt", mustTime(t, "2026-03-01T10:30:00Z"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(backup, "fall_base.json.20260301T103000Z.fmt.bak"), backup)
	assert.FileExists(t, backup)

	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestBackupFile_NoSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fall_base.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	backup, err := BackupFile(path, "", mustTime(t, "2026-03-01T10:30:00Z"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(backup, "fall_base.json.20260301T103000Z.bak"), backup)
}

func TestLatestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fall_base.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	t.Run("no backups", func(t *testing.T) {
		latest, err := LatestBackup(path)
		require.NoError(t, err)
		assert.Empty(t, latest)
	})

	t.Run("newest wins", func(t *testing.T) {
		first, err := BackupFile(path, "", mustTime(t, "2026-03-01T10:00:00Z"))
		require.NoError(t, err)
		second, err := BackupFile(path, "fmt", mustTime(t, "2026-03-02T10:00:00Z"))
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		latest, err := LatestBackup(path)
		require.NoError(t, err)
		assert.Equal(t, second, latest)
	})
}
