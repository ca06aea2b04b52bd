package jsonfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BackupDirName is the subdirectory, beside the partition files,
// that holds timestamped backups. Backups are never auto-pruned.
const BackupDirName = "backups"

const backupTimeLayout = "20060102T150405Z"

// WriteFileAtomic writes data to path through a uniquely named
// temporary file in the same directory followed by a rename. A reader
// concurrent with the write sees either the old file or the new one,
// never a torn mix.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.New().String())

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	return nil
}

// BackupFile copies path into the backups subdirectory as
// "<base>.<UTC timestamp>[.<suffix>].bak" and returns the backup
// path. The copy happens before any destructive rewrite so a failed
// stage never loses the prior state.
func BackupFile(path, suffix string, now time.Time) (string, error) {
	backupDir := filepath.Join(filepath.Dir(path), BackupDirName)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := filepath.Base(path) + "." + now.UTC().Format(backupTimeLayout)
	if suffix != "" {
		name += "." + suffix
	}
	name += ".bak"

	backupPath := filepath.Join(backupDir, name)
	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("backup %s: %w", filepath.Base(path), err)
	}

	return backupPath, nil
}

// LatestBackup returns the newest backup for the partition file at
// path, or "" when none exists. Backup names embed a sortable UTC
// timestamp, so lexicographic order is chronological order.
func LatestBackup(path string) (string, error) {
	pattern := filepath.Join(filepath.Dir(path), BackupDirName, filepath.Base(path)+"*.bak")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}

	latest := matches[0]
	for _, m := range matches[1:] {
		if m > latest {
			latest = m
		}
	}
	return latest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
