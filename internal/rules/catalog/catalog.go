// Package catalog is the static registry of supported AI coding assistants
// and the on-disk footprints that identify them. Adding a tool is an edit to
// this file, never a runtime capability.
package catalog

import "sort"

// ToolID identifies one supported AI coding assistant.
type ToolID string

const (
	ToolCursor    ToolID = "cursor"
	ToolWindsurf  ToolID = "windsurf"
	ToolKilocode  ToolID = "kilocode"
	ToolClaudeDev ToolID = "claude-dev"
	ToolCopilot   ToolID = "copilot"
	ToolOther     ToolID = "other"
)

// Reserved file names materialized from a profile's free-text fields at
// switch time. They double as the footprint of ToolOther so that leftovers
// from any previous switch are always detected and cleared.
const (
	RulesFileName  = ".rules"
	IgnoreFileName = ".aiignore"
	MemoryFileName = "memory_bank"
)

// BackupDirName is the directory under a managed target that holds switch
// backups. It is deliberately absent from every footprint so that clearing
// never touches it.
const BackupDirName = ".ai-config-backups"

// footprints maps each tool to the relative paths that identify it. Entries
// may be plain files, directories, or glob patterns rooted at the target
// directory. Order matters only for detection short-circuiting: the most
// common marker goes first.
var footprints = map[ToolID][]string{
	ToolCursor:    {".cursorrules", ".cursorignore", ".cursor/rules"},
	ToolWindsurf:  {".windsurfrules", ".codeiumignore", ".windsurf/rules"},
	ToolKilocode:  {".kilocode", ".kilocodemodes"},
	ToolClaudeDev: {".clinerules", ".clineignore"},
	ToolCopilot:   {".github/copilot-instructions.md", ".github/instructions/*.instructions.md"},
	ToolOther:     {RulesFileName, IgnoreFileName, MemoryFileName},
}

// All returns every supported tool in stable order.
func All() []ToolID {
	return []ToolID{ToolCursor, ToolWindsurf, ToolKilocode, ToolClaudeDev, ToolCopilot, ToolOther}
}

// Known reports whether id names a supported tool.
func Known(id ToolID) bool {
	_, ok := footprints[id]
	return ok
}

// Footprint returns the relative paths identifying the given tool. Unknown
// tools yield nil. The returned slice is a copy; callers may mutate it.
func Footprint(id ToolID) []string {
	paths, ok := footprints[id]
	if !ok {
		return nil
	}
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}

// ReservedPaths returns the reserved file names written from a profile's
// text fields.
func ReservedPaths() []string {
	return []string{RulesFileName, IgnoreFileName, MemoryFileName}
}

// IsReserved reports whether path is one of the reserved file names.
func IsReserved(path string) bool {
	switch path {
	case RulesFileName, IgnoreFileName, MemoryFileName:
		return true
	}
	return false
}

// UnionPaths returns the deduplicated union of every tool's footprint,
// sorted lexicographically. This is the universe of paths a switch backs up
// and clears: the currently active tool may differ from the incoming one, so
// the whole known universe is swept, not just one footprint.
func UnionPaths() []string {
	seen := make(map[string]struct{})
	for _, tool := range All() {
		for _, path := range footprints[tool] {
			seen[path] = struct{}{}
		}
	}
	union := make([]string, 0, len(seen))
	for path := range seen {
		union = append(union, path)
	}
	sort.Strings(union)
	return union
}
