package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFile creates a file with placeholder content under dir.
func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("FROM alpine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_Stdin(t *testing.T) {
	got, err := Resolve("-")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "-" {
		t.Errorf("expected %q, got %q", "-", got)
	}
}

func TestResolve_ExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFile(t, tmpDir, "custom.Dockerfile")

	got, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

func TestResolve_MissingPath(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope", "Dockerfile"))
	if err == nil {
		t.Fatal("expected error for missing path")
	}

	var notFound *FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *FileNotFoundError, got %T", err)
	}
	if notFound.Dir {
		t.Error("missing file should not report the directory case")
	}
}

func TestResolve_DirectoryExactName(t *testing.T) {
	tmpDir := t.TempDir()
	want := writeFile(t, tmpDir, "Dockerfile")
	// A variant alongside the exact name must not win.
	writeFile(t, tmpDir, "Dockerfile.dev")

	got, err := Resolve(tmpDir)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolve_DirectoryContainerfile(t *testing.T) {
	tmpDir := t.TempDir()
	want := writeFile(t, tmpDir, "Containerfile")

	got, err := Resolve(tmpDir)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestResolve_DirectorySingleVariant(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{name: "Dockerfile suffix variant", file: "Dockerfile.prod"},
		{name: "Dockerfile prefix variant", file: "api.Dockerfile"},
		{name: "Containerfile variant", file: "web.Containerfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			want := writeFile(t, tmpDir, tt.file)

			got, err := Resolve(tmpDir)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestResolve_DirectoryNoMatch(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "README.md")

	_, err := Resolve(tmpDir)
	if err == nil {
		t.Fatal("expected error for directory without build files")
	}

	var notFound *FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *FileNotFoundError, got %T", err)
	}
	if !notFound.Dir {
		t.Error("directory probe should report the directory case")
	}
	if notFound.Path != tmpDir {
		t.Errorf("expected path %q, got %q", tmpDir, notFound.Path)
	}
}

func TestResolve_DirectoryAmbiguous(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "api.Dockerfile")
	writeFile(t, tmpDir, "worker.Dockerfile")

	_, err := Resolve(tmpDir)
	if err == nil {
		t.Fatal("expected error for ambiguous directory")
	}

	var ambiguous *AmbiguousInputError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousInputError, got %T", err)
	}
	if len(ambiguous.Matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(ambiguous.Matches))
	}
}

func TestResolve_SubdirectoriesIgnored(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "Dockerfile")
	want := writeFile(t, tmpDir, "api.Dockerfile")

	got, err := Resolve(tmpDir)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPatterns(t *testing.T) {
	expected := map[string]bool{
		"Dockerfile.*":    false,
		"*.Dockerfile":    false,
		"Containerfile.*": false,
		"*.Containerfile": false,
	}

	for _, p := range Patterns() {
		if _, ok := expected[p]; ok {
			expected[p] = true
		}
	}

	for p, found := range expected {
		if !found {
			t.Errorf("Patterns() missing expected pattern %q", p)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	notFound := &FileNotFoundError{Path: "missing/Dockerfile"}
	if got := notFound.Error(); got != "Dockerfile not found at missing/Dockerfile" {
		t.Errorf("unexpected message: %q", got)
	}

	dirNotFound := &FileNotFoundError{Path: "deploy", Dir: true}
	if got := dirNotFound.Error(); got != "no Dockerfile found in deploy" {
		t.Errorf("unexpected message: %q", got)
	}

	ambiguous := &AmbiguousInputError{
		Dir:     "deploy",
		Matches: []string{"deploy/api.Dockerfile", "deploy/web.Dockerfile"},
	}
	want := "multiple build files found in deploy (api.Dockerfile, web.Dockerfile): pass one explicitly"
	if got := ambiguous.Error(); got != want {
		t.Errorf("unexpected message: %q", got)
	}
}
