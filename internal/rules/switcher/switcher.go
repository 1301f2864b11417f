// Package switcher applies a stored profile to a target directory. It is
// the only component that mutates a workspace, and it does so as a fixed
// sequence: back up every known footprint file, clear them all, then write
// the incoming profile's files.
package switcher

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
	"github.com/Zila-itc/vide-code-rules/internal/rules/storage"
)

// Phase tracks where a switch is in its lifecycle. A switch runs
// Idle → BackingUp → Clearing → Writing → Done; Error is terminal and
// reachable from any active phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBackingUp
	PhaseClearing
	PhaseWriting
	PhaseDone
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBackingUp:
		return "backing-up"
	case PhaseClearing:
		return "clearing"
	case PhaseWriting:
		return "writing"
	case PhaseDone:
		return "done"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// Options controls a single switch.
type Options struct {
	// Backup snapshots every existing footprint file before anything is
	// removed. When it is off, a failed switch has no recovery path.
	Backup bool
}

// Result reports the outcome of a successful switch. Callers should refresh
// any cached detection state afterwards, since the on-disk footprint has
// changed.
type Result struct {
	// BackupDir is the snapshot directory created for this switch, empty
	// when backups were disabled or nothing existed to back up.
	BackupDir string
	// Cleared and Written count the paths removed and materialized.
	Cleared int
	Written int
}

// Switcher orchestrates backup → clear → write for target directories.
type Switcher struct {
	storage *storage.Storage
	locks   *dirLocks
	now     func() time.Time
	logger  zerolog.Logger
}

// New creates a Switcher.
func New(st *storage.Storage, logger zerolog.Logger) *Switcher {
	return &Switcher{
		storage: st,
		locks:   newDirLocks(),
		now:     time.Now,
		logger:  logger,
	}
}

// SetNow overrides the clock for testing.
func (s *Switcher) SetNow(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Switch applies profile to targetDir. The directory must exist; the
// profile must be a resolved record, not a bare name, so there is no
// read-after-check race against the store. At most one switch runs per
// directory at a time; a second attempt fails fast with
// domain.ErrSwitchInProgress instead of queuing.
//
// On domain.ErrBackupFailed the directory is untouched. On
// domain.ErrClearFailed or domain.ErrWriteFailed the directory may be left
// in a mixed state; the backup directory named in the error, when present,
// is the recovery path (see Restore).
func (s *Switcher) Switch(targetDir string, profile *domain.Profile, opts Options) (Result, error) {
	var result Result

	if profile == nil {
		return result, domain.ErrProfileNotFound
	}
	if err := profile.Validate(); err != nil {
		return result, err
	}

	absDir, err := s.validateTarget(targetDir)
	if err != nil {
		return result, err
	}

	release, ok := s.locks.tryAcquire(absDir)
	if !ok {
		return result, fmt.Errorf("%w: %s", domain.ErrSwitchInProgress, absDir)
	}
	defer release()

	logger := s.logger.With().Str("dir", absDir).Str("profile", profile.Name).Logger()
	phase := PhaseIdle

	existing, err := s.existingUnionPaths(absDir)
	if err != nil {
		return result, fmt.Errorf("scan footprint paths in %s: %w", absDir, err)
	}

	if opts.Backup && len(existing) > 0 {
		phase = PhaseBackingUp
		backupDir, err := s.backup(absDir, existing)
		if err != nil {
			logger.Error().Err(err).Str("phase", phase.String()).Msg("switch aborted, target untouched")
			return result, fmt.Errorf("%w: %v", domain.ErrBackupFailed, err)
		}
		result.BackupDir = backupDir
		logger.Info().Str("backup", backupDir).Int("paths", len(existing)).Msg("backup created")
	}

	phase = PhaseClearing
	cleared, err := s.clear(existing)
	result.Cleared = cleared
	if err != nil {
		logger.Error().Err(err).Str("phase", phase.String()).Str("backup", result.BackupDir).
			Msg("switch failed mid-clear, directory may be in a mixed state")
		return result, fmt.Errorf("%w: %v", domain.ErrClearFailed, err)
	}

	phase = PhaseWriting
	written, err := s.write(absDir, profile)
	result.Written = written
	if err != nil {
		logger.Error().Err(err).Str("phase", phase.String()).Str("backup", result.BackupDir).
			Msg("switch failed mid-write, directory may be in a partial state")
		return result, fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	phase = PhaseDone
	logger.Info().Int("cleared", cleared).Int("written", written).Str("phase", phase.String()).Msg("switch complete")
	return result, nil
}

func (s *Switcher) validateTarget(targetDir string) (string, error) {
	if strings.TrimSpace(targetDir) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidTarget)
	}
	absDir, err := filepath.Abs(targetDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidTarget, err)
	}
	isDir, err := s.storage.IsDir(absDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidTarget, err)
	}
	if !isDir {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidTarget, absDir)
	}
	return absDir, nil
}

// existingUnionPaths resolves the union of all tool footprints against the
// target directory and returns the absolute paths that actually exist,
// globs expanded.
func (s *Switcher) existingUnionPaths(absDir string) ([]string, error) {
	var present []string
	for _, rel := range catalog.UnionPaths() {
		full := filepath.Join(absDir, filepath.FromSlash(rel))
		if strings.ContainsAny(rel, "*?[") {
			matches, err := s.storage.Glob(full)
			if err != nil {
				return nil, err
			}
			present = append(present, matches...)
			continue
		}
		exists, err := s.storage.Exists(full)
		if err != nil {
			return nil, err
		}
		if exists {
			present = append(present, full)
		}
	}
	sort.Strings(present)
	return present, nil
}

// backup copies every path in existing into a freshly created, uniquely
// timestamped directory under the target's backup root, preserving relative
// structure. A directory that already exists for the same timestamp is a
// hard error: two switches within the same clock second must not corrupt
// each other's snapshot.
func (s *Switcher) backup(absDir string, existing []string) (string, error) {
	stamp := s.now().UTC().Format("20060102-150405")
	backupDir := filepath.Join(absDir, catalog.BackupDirName, "backup-"+stamp)

	if err := s.storage.MkdirAll(filepath.Join(absDir, catalog.BackupDirName)); err != nil {
		return "", fmt.Errorf("create backup root: %w", err)
	}
	if err := s.storage.Mkdir(backupDir); err != nil {
		return "", fmt.Errorf("create backup directory %s: %w", backupDir, err)
	}

	for _, full := range existing {
		rel, err := filepath.Rel(absDir, full)
		if err != nil {
			return "", err
		}
		if err := s.storage.CopyTree(full, filepath.Join(backupDir, rel)); err != nil {
			return "", fmt.Errorf("back up %s: %w", rel, err)
		}
	}
	return backupDir, nil
}

// clear removes every existing footprint path. It intentionally sweeps
// other tools' leftovers too, so the post-switch directory reflects exactly
// one active configuration. Returns how many paths were removed before any
// failure.
func (s *Switcher) clear(existing []string) (int, error) {
	removed := 0
	for _, full := range existing {
		if err := s.storage.RemoveAll(full); err != nil {
			return removed, fmt.Errorf("remove %s: %w", full, err)
		}
		removed++
	}
	return removed, nil
}

// write materializes the profile's files and reserved text fields. Parent
// directories are created as needed; files already written are not rolled
// back on failure.
func (s *Switcher) write(absDir string, profile *domain.Profile) (int, error) {
	written := 0

	keys := make([]string, 0, len(profile.Files))
	for key := range profile.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		data, err := profile.Files[key].Render()
		if err != nil {
			return written, fmt.Errorf("render %s: %w", key, err)
		}
		full := filepath.Join(absDir, filepath.FromSlash(key))
		if err := s.storage.WriteFile(full, data); err != nil {
			return written, fmt.Errorf("write %s: %w", key, err)
		}
		written++
	}

	reserved := []struct {
		name string
		text string
	}{
		{catalog.RulesFileName, profile.RulesText},
		{catalog.IgnoreFileName, profile.IgnoreText},
		{catalog.MemoryFileName, profile.MemoryText},
	}
	for _, r := range reserved {
		if r.text == "" {
			continue
		}
		if err := s.storage.WriteFile(filepath.Join(absDir, r.name), []byte(r.text)); err != nil {
			return written, fmt.Errorf("write %s: %w", r.name, err)
		}
		written++
	}
	return written, nil
}
