package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeDefinition lays out packages/<name>/<name>.<version>/opam under root.
func writeDefinition(t *testing.T, root, name, version, body string) {
	t.Helper()
	dir := filepath.Join(root, "packages", name, name+"."+version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "opam"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListPackageNames(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "lwt", "5.6.1", `opam-version: "2.0"`)
	writeDefinition(t, root, "dune", "3.10.0", `opam-version: "2.0"`)
	// Hidden and file entries under packages/ are ignored.
	if err := os.MkdirAll(filepath.Join(root, "packages", ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "packages", "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New("https://example.org/repo.git", root)
	names, err := r.ListPackageNames()
	if err != nil {
		t.Fatalf("ListPackageNames: %v", err)
	}
	want := []string{"dune", "lwt"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestListVersions(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "lwt", "5.6.1", `opam-version: "2.0"`)
	writeDefinition(t, root, "lwt", "5.7.0", `opam-version: "2.0"`)
	// A directory not following the <name>.<version> shape is skipped.
	if err := os.MkdirAll(filepath.Join(root, "packages", "lwt", "notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := New("https://example.org/repo.git", root)
	versions, err := r.ListVersions("lwt")
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %v", versions)
	}
}

func TestListVersions_UnknownPackage(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "packages"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := New("https://example.org/repo.git", root)
	_, err := r.ListVersions("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReadDefinition(t *testing.T) {
	root := t.TempDir()
	const body = "opam-version: \"2.0\"\nsynopsis: \"Cooperative threads\"\n"
	writeDefinition(t, root, "lwt", "5.6.1", body)

	r := New("https://example.org/repo.git", root)
	got, err := r.ReadDefinition("lwt", "5.6.1")
	if err != nil {
		t.Fatalf("ReadDefinition: %v", err)
	}
	if got != body {
		t.Errorf("definition mismatch:\n%s", got)
	}

	if _, err := r.ReadDefinition("lwt", "9.9.9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing version, got %v", err)
	}
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	r := New("https://example.org/repo.git", root)
	if r.Exists() {
		t.Error("empty directory should not count as a clone")
	}
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !r.Exists() {
		t.Error("directory with .git should count as a clone")
	}
}
