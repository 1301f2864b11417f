package storage

// Tests for the atomic file operations the engine relies on.
//
// Focus: WriteFileAtomic and CopyFile (temp file + rename), CopyTree
// (recursive structure preservation), RemoveAll (missing path tolerated).

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	path := "/store/profiles.json"
	if err := st.WriteFileAtomic(path, []byte(`{"a":1}`), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != `{"a":1}` {
		t.Errorf("unexpected content %q", string(content))
	}

	if exists, _ := afero.Exists(fs, path+".tmp"); exists {
		t.Error("temp file must not survive a successful write")
	}
}

func TestWriteFileAtomicOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	path := "/store/profiles.json"
	if err := afero.WriteFile(fs, path, []byte("old"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := st.WriteFileAtomic(path, []byte("new"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	content, _ := afero.ReadFile(fs, path)
	if string(content) != "new" {
		t.Errorf("expected 'new', got %q", string(content))
	}
}

func TestCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	if err := afero.WriteFile(fs, "/project/.cursorrules", []byte("rules"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := st.CopyFile("/project/.cursorrules", "/backup/.cursorrules"); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	content, err := afero.ReadFile(fs, "/backup/.cursorrules")
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(content) != "rules" {
		t.Errorf("expected 'rules', got %q", string(content))
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	err := st.CopyFile("/nope", "/dest")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist in chain, got: %v", err)
	}
}

func TestCopyTreePreservesStructure(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	files := map[string]string{
		"/project/.cursor/rules/base.mdc":         "base",
		"/project/.cursor/rules/extra/deep.mdc":   "deep",
		"/project/.cursor/rules/extra/deeper.mdc": "deeper",
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup %s: %v", path, err)
		}
	}

	if err := st.CopyTree("/project/.cursor", "/backup/.cursor"); err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}

	for path, want := range map[string]string{
		"/backup/.cursor/rules/base.mdc":         "base",
		"/backup/.cursor/rules/extra/deep.mdc":   "deep",
		"/backup/.cursor/rules/extra/deeper.mdc": "deeper",
	} {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if string(content) != want {
			t.Errorf("%s: expected %q, got %q", path, want, string(content))
		}
	}
}

func TestCopyTreeSingleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	if err := afero.WriteFile(fs, "/project/.windsurfrules", []byte("w"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := st.CopyTree("/project/.windsurfrules", "/backup/.windsurfrules"); err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}
	if exists, _ := afero.Exists(fs, "/backup/.windsurfrules"); !exists {
		t.Error("file should be copied")
	}
}

func TestRemoveAllMissingPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	if err := st.RemoveAll("/not/there"); err != nil {
		t.Errorf("RemoveAll on a missing path must be a no-op, got %v", err)
	}
}

func TestRemoveAllDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	if err := afero.WriteFile(fs, "/project/.kilocode/rules.md", []byte("k"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := st.RemoveAll("/project/.kilocode"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if exists, _ := afero.Exists(fs, "/project/.kilocode"); exists {
		t.Error("directory should be gone")
	}
}

func TestIsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	if err := fs.MkdirAll("/project", 0o700); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := afero.WriteFile(fs, "/project/file", []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if isDir, err := st.IsDir("/project"); err != nil || !isDir {
		t.Errorf("IsDir(/project) = %v, %v; want true, nil", isDir, err)
	}
	if isDir, err := st.IsDir("/project/file"); err != nil || isDir {
		t.Errorf("IsDir(file) = %v, %v; want false, nil", isDir, err)
	}
	if isDir, err := st.IsDir("/missing"); err != nil || isDir {
		t.Errorf("IsDir(missing) = %v, %v; want false, nil", isDir, err)
	}
}

func TestGlob(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	paths := []string{
		"/project/.github/instructions/go.instructions.md",
		"/project/.github/instructions/ts.instructions.md",
		"/project/.github/instructions/readme.txt",
	}
	for _, path := range paths {
		if err := afero.WriteFile(fs, path, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup %s: %v", path, err)
		}
	}

	matches, err := st.Glob("/project/.github/instructions/*.instructions.md")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d: %v", len(matches), matches)
	}
}

func TestValidatePathSafetyNonExistent(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := New(fs)

	if err := st.ValidatePathSafety("/nonexistent/file.json"); err != nil {
		t.Errorf("non-existent path should be safe: %v", err)
	}
}
