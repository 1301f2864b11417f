package domain

import (
	"path"
	"regexp"
	"strings"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
)

var (
	reservedNamePattern = regexp.MustCompile(`^(?i)(con|prn|aux|nul|com[1-9]|lpt[1-9])$`)
	invalidCharsPattern = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// ValidateName validates a profile name for security and cross-platform
// compatibility and returns the trimmed form.
//
// The function checks for:
//   - Empty names or whitespace-only names
//   - Dot navigation (. or ..)
//   - Null bytes (path traversal attack vector)
//   - Non-printable ASCII characters
//   - Invalid filesystem characters (<>:"/\|?*)
//   - Reserved Windows filenames (CON, PRN, AUX, NUL, COM1-9, LPT1-9)
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 0 {
		return "", ErrNameEmpty
	}
	if trimmed == "." || trimmed == ".." {
		return "", ErrNameDot
	}

	// Explicit null byte check for defense-in-depth
	if strings.ContainsRune(trimmed, 0) {
		return "", ErrNameNullByte
	}

	for _, r := range trimmed {
		if r < 0x20 || r > 0x7e {
			return "", ErrNameNonPrintable
		}
	}
	if invalidCharsPattern.MatchString(trimmed) {
		return "", ErrNameInvalidChars
	}
	if reservedNamePattern.MatchString(trimmed) {
		return "", ErrNameReserved
	}
	return trimmed, nil
}

// ValidateFilePath checks a profile file key. Keys are slash-separated paths
// relative to the target directory and must stay inside it; the reserved
// names are rejected because the corresponding text fields own them.
func ValidateFilePath(p string) error {
	if p == "" {
		return ErrPathEscapesRoot
	}
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") || hasDrivePrefix(p) {
		return ErrPathAbsolute
	}
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ErrPathEscapesRoot
	}
	if catalog.IsReserved(cleaned) {
		return ErrPathReservedName
	}
	return nil
}

func hasDrivePrefix(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
