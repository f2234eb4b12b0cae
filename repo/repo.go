package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Repository is a local git clone of an opam repository. Path is the clone
// directory on disk; URL is the upstream to clone from and pull against.
type Repository struct {
	// URL is the upstream git remote.
	URL string
	// Path is the local clone directory.
	Path string
	// Branch, when non-empty, pins clone and pull to one branch.
	Branch string
}

// New creates a Repository rooted at path tracking url.
func New(url, path string) *Repository {
	return &Repository{URL: url, Path: path}
}

// Exists reports whether the clone directory holds a git repository.
func (r *Repository) Exists() bool {
	info, err := os.Stat(filepath.Join(r.Path, ".git"))
	return err == nil && info.IsDir()
}

// Clone creates the local clone. The parent directory is created when
// missing. Cloning into an existing clone is an error from git itself.
func (r *Repository) Clone(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSync, err)
	}
	args := []string{"--depth", "1"}
	if r.Branch != "" {
		args = append(args, "--branch", r.Branch)
	}
	args = append(args, r.URL, r.Path)
	_, err := gitCommand(ctx, "", "clone", args...)
	return err
}

// Pull fast-forwards the clone to the upstream head.
func (r *Repository) Pull(ctx context.Context) error {
	_, err := gitCommand(ctx, r.Path, "pull", "--ff-only")
	return err
}

// LastCommit returns the SHA1 of the clone's current HEAD.
func (r *Repository) LastCommit(ctx context.Context) (string, error) {
	return gitCommand(ctx, r.Path, "rev-parse", "HEAD")
}

// packagesDir is the root of the opam repository package tree.
func (r *Repository) packagesDir() string {
	return filepath.Join(r.Path, "packages")
}

// ListPackageNames enumerates the package names in the clone, sorted.
func (r *Repository) ListPackageNames() ([]string, error) {
	entries, err := os.ReadDir(r.packagesDir())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSync, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ListVersions enumerates the raw version strings of one package. Version
// directories are named "<name>.<version>"; entries not matching that shape
// are skipped. A package directory with no version subdirectories yields an
// empty slice, a missing package directory yields ErrNotFound.
func (r *Repository) ListVersions(name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.packagesDir(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrSync, err)
	}
	prefix := name + "."
	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		raw, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok || raw == "" {
			continue
		}
		versions = append(versions, raw)
	}
	return versions, nil
}

// ReadDefinition returns the raw opam definition of one package version.
func (r *Repository) ReadDefinition(name, version string) (string, error) {
	path := filepath.Join(r.packagesDir(), name, name+"."+version, "opam")
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s.%s", ErrNotFound, name, version)
		}
		return "", fmt.Errorf("%w: %v", ErrSync, err)
	}
	return string(raw), nil
}
