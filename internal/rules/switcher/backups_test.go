package switcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
)

func switchAt(t *testing.T, s *Switcher, stamp time.Time, name string) Result {
	t.Helper()
	s.SetNow(func() time.Time { return stamp })
	result, err := s.Switch("/project", cursorProfile(name), Options{Backup: true})
	require.NoError(t, err)
	return result
}

func TestListBackupsNewestFirst(t *testing.T) {
	s, fs := newTestSwitcher(t)
	write(t, fs, "/project/.cursorrules", "seed")

	switchAt(t, s, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), "a")
	switchAt(t, s, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), "b")
	switchAt(t, s, time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC), "c")

	backups, err := s.ListBackups("/project")
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, "backup-20260103-100000", backups[0].Name)
	assert.Equal(t, "backup-20260102-100000", backups[1].Name)
	assert.Equal(t, "backup-20260101-100000", backups[2].Name)
	assert.True(t, backups[0].Timestamp.After(backups[2].Timestamp))
}

func TestListBackupsEmptyWhenRootMissing(t *testing.T) {
	s, _ := newTestSwitcher(t)
	backups, err := s.ListBackups("/project")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestListBackupsIgnoresStrayEntries(t *testing.T) {
	s, fs := newTestSwitcher(t)
	write(t, fs, "/project/.cursorrules", "seed")
	switchAt(t, s, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC), "a")

	write(t, fs, "/project/.ai-config-backups/notes.txt", "stray file")
	require.NoError(t, fs.MkdirAll("/project/.ai-config-backups/scratch", 0o700))

	backups, err := s.ListBackups("/project")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "backup-20260101-100000", backups[0].Name)
}

func TestRestoreRoundTrip(t *testing.T) {
	s, fs := newTestSwitcher(t)

	// Establish profile A, then switch to B with a backup of A's state.
	_, err := s.Switch("/project", cursorProfile("a"), Options{})
	require.NoError(t, err)

	result := switchAt(t, s, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), "b")
	require.NotEmpty(t, result.BackupDir)
	assert.Equal(t, "cursor rules for b", readString(t, fs, "/project/.cursorrules"))

	require.NoError(t, s.Restore("/project", "backup-20260201-080000"))

	// A's files are back, B's are gone, and the snapshot survives.
	assert.Equal(t, "cursor rules for a", readString(t, fs, "/project/.cursorrules"))
	assert.Equal(t, "base", readString(t, fs, "/project/.cursor/rules/base.mdc"))
	assert.Equal(t, "shared rules", readString(t, fs, "/project/.rules"))
	assert.True(t, exists(t, fs, result.BackupDir+"/.cursorrules"))
}

func TestRestoreUnknownBackup(t *testing.T) {
	s, fs := newTestSwitcher(t)
	write(t, fs, "/project/.cursorrules", "seed")
	switchAt(t, s, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), "a")

	err := s.Restore("/project", "backup-19990101-000000")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	assert.Equal(t, "cursor rules for a", readString(t, fs, "/project/.cursorrules"))
}

func TestRestoreRejectsNonSnapshotNames(t *testing.T) {
	s, fs := newTestSwitcher(t)
	write(t, fs, "/project/.cursorrules", "precious")
	write(t, fs, "/outside/evil/.cursorrules", "planted")

	names := []string{
		"",
		"..",
		"../../outside/evil",
		"backup-x/../../../outside/evil",
		`backup-..\..\outside`,
		"nested/backup-20260101-000000",
		"notes.txt",
	}
	for _, name := range names {
		err := s.Restore("/project", name)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound, "name %q", name)
	}

	// The live configuration was never cleared or replaced.
	assert.Equal(t, "precious", readString(t, fs, "/project/.cursorrules"))
}

func TestRestoreContendsWithSwitch(t *testing.T) {
	s, fs := newTestSwitcher(t)
	write(t, fs, "/project/.cursorrules", "seed")
	switchAt(t, s, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), "a")

	release, ok := s.locks.tryAcquire("/project")
	require.True(t, ok)
	defer release()

	err := s.Restore("/project", "backup-20260201-080000")
	assert.ErrorIs(t, err, domain.ErrSwitchInProgress)
}

func TestPruneBackupsHonorsCutoff(t *testing.T) {
	s, fs := newTestSwitcher(t)
	write(t, fs, "/project/.cursorrules", "seed")

	switchAt(t, s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "a")
	switchAt(t, s, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "b")
	switchAt(t, s, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "c")

	s.SetNow(func() time.Time {
		return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	})

	removed, err := s.PruneBackups("/project", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	backups, err := s.ListBackups("/project")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "backup-20260301-000000", backups[0].Name)
}

func TestPruneBackupsNothingToRemove(t *testing.T) {
	s, _ := newTestSwitcher(t)
	removed, err := s.PruneBackups("/project", time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
