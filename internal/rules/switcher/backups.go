package switcher

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
)

// BackupInfo describes one switch snapshot under a target directory.
type BackupInfo struct {
	Name      string
	Path      string
	Timestamp time.Time
}

// ListBackups returns the snapshots under targetDir's backup root, newest
// first. A missing backup root yields an empty list.
func (s *Switcher) ListBackups(targetDir string) ([]BackupInfo, error) {
	absDir, err := s.validateTarget(targetDir)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(absDir, catalog.BackupDirName)
	exists, err := s.storage.Exists(root)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []BackupInfo{}, nil
	}

	entries, err := s.storage.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}
	var backups []BackupInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup-") {
			continue
		}
		info := BackupInfo{
			Name: entry.Name(),
			Path: filepath.Join(root, entry.Name()),
		}
		if ts, err := time.Parse("20060102-150405", strings.TrimPrefix(entry.Name(), "backup-")); err == nil {
			info.Timestamp = ts
		} else {
			info.Timestamp = entry.ModTime()
		}
		backups = append(backups, info)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// validateBackupName rejects anything that is not a plain snapshot
// directory name. Restore clears the live configuration before copying, so
// a name that resolved outside the backup root would both destroy the
// workspace and pull in an arbitrary tree.
func validateBackupName(name string) error {
	if name == "" || !strings.HasPrefix(name, "backup-") ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: backup %q", domain.ErrProfileNotFound, name)
	}
	return nil
}

// Restore re-applies the named snapshot to targetDir: the current footprint
// files are cleared, then the snapshot's contents are copied back. The
// snapshot itself is never mutated. Restore takes the same per-directory
// lock as Switch.
func (s *Switcher) Restore(targetDir, backupName string) error {
	absDir, err := s.validateTarget(targetDir)
	if err != nil {
		return err
	}
	if err := validateBackupName(backupName); err != nil {
		return err
	}
	backupDir := filepath.Join(absDir, catalog.BackupDirName, backupName)
	if isDir, err := s.storage.IsDir(backupDir); err != nil || !isDir {
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrBackupFailed, err)
		}
		return fmt.Errorf("%w: backup %s", domain.ErrProfileNotFound, backupName)
	}

	release, ok := s.locks.tryAcquire(absDir)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSwitchInProgress, absDir)
	}
	defer release()

	existing, err := s.existingUnionPaths(absDir)
	if err != nil {
		return fmt.Errorf("scan footprint paths in %s: %w", absDir, err)
	}
	if _, err := s.clear(existing); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrClearFailed, err)
	}

	entries, err := s.storage.ReadDir(backupDir)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	for _, entry := range entries {
		src := filepath.Join(backupDir, entry.Name())
		dst := filepath.Join(absDir, entry.Name())
		if err := s.storage.CopyTree(src, dst); err != nil {
			return fmt.Errorf("%w: restore %s: %v", domain.ErrWriteFailed, entry.Name(), err)
		}
	}
	s.logger.Info().Str("dir", absDir).Str("backup", backupName).Msg("backup restored")
	return nil
}

// PruneBackups removes snapshots under targetDir older than the provided
// duration and returns the number removed.
func (s *Switcher) PruneBackups(targetDir string, olderThan time.Duration) (int, error) {
	backups, err := s.ListBackups(targetDir)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().UTC().Add(-olderThan)
	removed := 0
	for _, backup := range backups {
		if !backup.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.storage.RemoveAll(backup.Path); err != nil {
			return removed, fmt.Errorf("failed to delete backup %s: %w", backup.Name, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info().Str("dir", targetDir).Int("removed", removed).Msg("pruned old backups")
	}
	return removed, nil
}
