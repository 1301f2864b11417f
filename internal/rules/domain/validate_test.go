package domain

import (
	"errors"
	"testing"
)

func TestValidateNameAcceptsTrimmed(t *testing.T) {
	got, err := ValidateName("  react-cursor  ")
	if err != nil {
		t.Fatalf("ValidateName failed: %v", err)
	}
	if got != "react-cursor" {
		t.Errorf("expected trimmed name, got %q", got)
	}
}

func TestValidateNameRejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrNameEmpty},
		{"whitespace only", "   ", ErrNameEmpty},
		{"single dot", ".", ErrNameDot},
		{"double dot", "..", ErrNameDot},
		{"null byte", "a\x00b", ErrNameNullByte},
		{"control char", "a\tb", ErrNameNonPrintable},
		{"unicode", "prófile", ErrNameNonPrintable},
		{"slash", "a/b", ErrNameInvalidChars},
		{"backslash", `a\b`, ErrNameInvalidChars},
		{"angle bracket", "a<b", ErrNameInvalidChars},
		{"reserved device", "CON", ErrNameReserved},
		{"reserved com port", "com4", ErrNameReserved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateName(tc.input)
			if !errors.Is(err, tc.want) {
				t.Errorf("ValidateName(%q) = %v, want %v", tc.input, err, tc.want)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	valid := []string{
		"config.json",
		".cursorrules",
		"nested/dir/file.md",
		".github/copilot-instructions.md",
	}
	for _, path := range valid {
		if err := ValidateFilePath(path); err != nil {
			t.Errorf("ValidateFilePath(%q) = %v, want nil", path, err)
		}
	}

	cases := []struct {
		input string
		want  error
	}{
		{"", ErrPathEscapesRoot},
		{"..", ErrPathEscapesRoot},
		{"../escape.txt", ErrPathEscapesRoot},
		{"nested/../../escape.txt", ErrPathEscapesRoot},
		{"/etc/passwd", ErrPathAbsolute},
		{`C:\windows\system32`, ErrPathAbsolute},
		{".rules", ErrPathReservedName},
		{".aiignore", ErrPathReservedName},
		{"memory_bank", ErrPathReservedName},
	}
	for _, tc := range cases {
		if err := ValidateFilePath(tc.input); !errors.Is(err, tc.want) {
			t.Errorf("ValidateFilePath(%q) = %v, want %v", tc.input, err, tc.want)
		}
	}
}

func TestValidateFilePathAllowsInternalDotDotName(t *testing.T) {
	// "..name" is a legal file name, only path segments escape.
	if err := ValidateFilePath("..hidden"); err != nil {
		t.Errorf("ValidateFilePath(..hidden) = %v, want nil", err)
	}
}
