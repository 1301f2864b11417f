// Package detect inspects a target directory and reports which catalogued
// tools have configuration files present. Detection is advisory and
// read-only: it never mutates the workspace and never fails on a single
// unreadable path.
package detect

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
	"github.com/Zila-itc/vide-code-rules/internal/rules/storage"
)

// Detector scans directories against the tool catalog.
type Detector struct {
	storage *storage.Storage
	logger  zerolog.Logger
}

// New creates a Detector.
func New(st *storage.Storage, logger zerolog.Logger) *Detector {
	return &Detector{storage: st, logger: logger}
}

// Detect returns the set of tools whose footprint is present under
// targetDir, in catalog order. A single existing footprint path is enough
// to include a tool; the rest of its footprint is not checked. A
// non-existent targetDir yields an empty set, not an error. I/O errors on
// individual paths are logged and treated as "not present" so one
// unreadable path cannot abort detection of the others.
func (d *Detector) Detect(targetDir string) []catalog.ToolID {
	isDir, err := d.storage.IsDir(targetDir)
	if err != nil {
		d.logger.Warn().Err(err).Str("dir", targetDir).Msg("cannot stat target directory")
		return nil
	}
	if !isDir {
		return nil
	}

	var found []catalog.ToolID
	for _, tool := range catalog.All() {
		for _, rel := range catalog.Footprint(tool) {
			present, err := d.pathPresent(targetDir, rel)
			if err != nil {
				d.logger.Warn().Err(err).
					Str("dir", targetDir).
					Str("path", rel).
					Str("tool", string(tool)).
					Msg("skipping unreadable footprint path")
				continue
			}
			if present {
				found = append(found, tool)
				break
			}
		}
	}
	return found
}

// pathPresent checks one footprint entry, expanding globs rooted at the
// target directory.
func (d *Detector) pathPresent(targetDir, rel string) (bool, error) {
	full := filepath.Join(targetDir, filepath.FromSlash(rel))
	if isGlob(rel) {
		matches, err := d.storage.Glob(full)
		if err != nil {
			return false, err
		}
		return len(matches) > 0, nil
	}
	return d.storage.Exists(full)
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// FindMatchingProfile returns the first stored profile whose tool was
// detected under targetDir. Profiles sharing a detected tool are tried in
// lexicographic name order; the tie-break is arbitrary policy, not a
// guarantee.
func (d *Detector) FindMatchingProfile(targetDir string, profiles map[string]*domain.Profile) (*domain.Profile, bool) {
	detected := d.Detect(targetDir)
	if len(detected) == 0 {
		return nil, false
	}
	present := make(map[catalog.ToolID]struct{}, len(detected))
	for _, tool := range detected {
		present[tool] = struct{}{}
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		profile := profiles[name]
		if _, ok := present[profile.AITool]; ok {
			return profile.Clone(), true
		}
	}
	return nil, false
}

// Snapshot captures every existing footprint file under targetDir into a
// files mapping, so the current workspace can be saved as a profile.
// Directory footprints are walked recursively; globs are expanded. Reserved
// files are skipped because their content belongs in the profile's text
// fields, which Snapshot returns separately.
func (d *Detector) Snapshot(targetDir string) (map[string]domain.FileContent, map[string]string, error) {
	files := make(map[string]domain.FileContent)
	texts := make(map[string]string)

	for _, rel := range catalog.UnionPaths() {
		var matches []string
		if isGlob(rel) {
			expanded, err := d.storage.Glob(filepath.Join(targetDir, filepath.FromSlash(rel)))
			if err != nil {
				d.logger.Warn().Err(err).Str("pattern", rel).Msg("skipping unreadable glob")
				continue
			}
			matches = expanded
		} else {
			matches = []string{filepath.Join(targetDir, filepath.FromSlash(rel))}
		}

		for _, full := range matches {
			if err := d.collect(targetDir, full, files, texts); err != nil {
				return nil, nil, err
			}
		}
	}
	return files, texts, nil
}

func (d *Detector) collect(targetDir, full string, files map[string]domain.FileContent, texts map[string]string) error {
	exists, err := d.storage.Exists(full)
	if err != nil || !exists {
		if err != nil {
			d.logger.Warn().Err(err).Str("path", full).Msg("skipping unreadable path")
		}
		return nil
	}

	isDir, err := d.storage.IsDir(full)
	if err != nil {
		return err
	}
	if isDir {
		entries, err := d.storage.ReadDir(full)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := d.collect(targetDir, filepath.Join(full, entry.Name()), files, texts); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := d.storage.ReadFile(full)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(targetDir, full)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	if catalog.IsReserved(rel) {
		texts[rel] = string(data)
		return nil
	}
	files[rel] = domain.FileContent{Text: string(data)}
	return nil
}
