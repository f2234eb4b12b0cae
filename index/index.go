package index

import (
	"log"
	"sort"

	"github.com/brycenichols/ocaml.org/opam"
)

// Source lists the packages known to a repository snapshot. Implementations
// are expected to be cheap directory listings; definition files are read
// lazily through the Loader, never here.
type Source interface {
	// ListPackageNames returns all package names in the repository.
	ListPackageNames() ([]string, error)
	// ListVersions returns all raw version strings of one package.
	ListVersions(name string) ([]string, error)
}

// Loader materializes the metadata of one package version. It is invoked at
// most a handful of times per handle (once in the common case) and its
// outcome is memoized.
type Loader func(name string, version opam.Version) (*opam.Metadata, error)

// Package is a query result: one version of one package with its lazy
// metadata handle. Forcing the handle is the only place parsing cost is
// paid.
type Package struct {
	Name    string
	Version opam.Version
	Meta    *Handle
}

// VersionStore maps the versions of one package to their metadata handles,
// ordered by the natural version order.
type VersionStore struct {
	versions []opam.Version // ascending
	handles  map[opam.Version]*Handle
}

func newVersionStore() *VersionStore {
	return &VersionStore{handles: make(map[opam.Version]*Handle)}
}

func (s *VersionStore) insert(v opam.Version, h *Handle) {
	if _, exists := s.handles[v]; !exists {
		s.versions = append(s.versions, v)
	}
	s.handles[v] = h
}

func (s *VersionStore) sortVersions() {
	sort.Slice(s.versions, func(i, j int) bool {
		return s.versions[i].Less(s.versions[j])
	})
}

// Get returns the handle for one version, if present.
func (s *VersionStore) Get(v opam.Version) (*Handle, bool) {
	h, ok := s.handles[v]
	return h, ok
}

// MaxVersion returns the greatest version in the store. The second return
// is false on an empty store; callers must check it before using the
// version.
func (s *VersionStore) MaxVersion() (opam.Version, bool) {
	if len(s.versions) == 0 {
		return "", false
	}
	return s.versions[len(s.versions)-1], true
}

// Versions returns all versions in ascending order.
func (s *VersionStore) Versions() []opam.Version {
	out := make([]opam.Version, len(s.versions))
	copy(out, s.versions)
	return out
}

// Len returns the number of versions in the store.
func (s *VersionStore) Len() int {
	return len(s.versions)
}

// PackageIndex maps package names to their version stores. An index is
// immutable once built: the refresh loop replaces the whole index
// atomically, so readers holding a reference never need locks and never
// observe a partially built snapshot.
type PackageIndex struct {
	names    []string // sorted, the iteration order of AllLatest
	packages map[string]*VersionStore
}

// Empty returns an index with no packages, the state published at process
// start before the first sync completes.
func Empty() *PackageIndex {
	return &PackageIndex{packages: make(map[string]*VersionStore)}
}

// Build derives a fresh index from src. Every version string that parses as
// a valid identifier gets a lazy handle; invalid version strings are logged
// and skipped, and invalid package names are logged and skipped entirely.
// Build writes only into the new structure, so the currently published
// index is never touched.
func Build(src Source, load Loader) (*PackageIndex, error) {
	names, err := src.ListPackageNames()
	if err != nil {
		return nil, err
	}

	ix := &PackageIndex{packages: make(map[string]*VersionStore, len(names))}
	for _, name := range names {
		if !opam.ValidName(name) {
			log.Printf("index: skipping invalid package name %q", name)
			continue
		}

		raws, err := src.ListVersions(name)
		if err != nil {
			return nil, err
		}

		store := newVersionStore()
		for _, raw := range raws {
			v, err := opam.ParseVersion(raw)
			if err != nil {
				log.Printf("index: skipping invalid version %q of %q", raw, name)
				continue
			}
			store.insert(v, NewHandle(func() (*opam.Metadata, error) {
				return load(name, v)
			}))
		}
		if store.Len() == 0 {
			continue
		}
		store.sortVersions()

		ix.names = append(ix.names, name)
		ix.packages[name] = store
	}
	sort.Strings(ix.names)

	return ix, nil
}

// Len returns the number of packages in the index.
func (ix *PackageIndex) Len() int {
	return len(ix.names)
}

// AllLatest returns every package at its maximum version, in the index's
// name order. Results are not ranked; ranking is the search package's job.
func (ix *PackageIndex) AllLatest() []Package {
	out := make([]Package, 0, len(ix.names))
	for _, name := range ix.names {
		store := ix.packages[name]
		max, ok := store.MaxVersion()
		if !ok {
			continue
		}
		h, _ := store.Get(max)
		out = append(out, Package{Name: name, Version: max, Meta: h})
	}
	return out
}

// VersionsOf returns all versions of one package in ascending order. The
// second return is false for unknown names.
func (ix *PackageIndex) VersionsOf(name string) ([]opam.Version, bool) {
	store, ok := ix.packages[name]
	if !ok {
		return nil, false
	}
	return store.Versions(), true
}

// LatestOf returns the package at its maximum version. The second return is
// false for unknown names.
func (ix *PackageIndex) LatestOf(name string) (Package, bool) {
	store, ok := ix.packages[name]
	if !ok {
		return Package{}, false
	}
	max, ok := store.MaxVersion()
	if !ok {
		return Package{}, false
	}
	h, _ := store.Get(max)
	return Package{Name: name, Version: max, Meta: h}, true
}

// Exact returns one specific version of one package. The second return is
// false when either the name or the version is unknown.
func (ix *PackageIndex) Exact(name string, v opam.Version) (Package, bool) {
	store, ok := ix.packages[name]
	if !ok {
		return Package{}, false
	}
	h, ok := store.Get(v)
	if !ok {
		return Package{}, false
	}
	return Package{Name: name, Version: v, Meta: h}, true
}
