package index

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/brycenichols/ocaml.org/opam"
)

// fakeSource is an in-memory repository listing with call counters.
type fakeSource struct {
	packages map[string][]string

	listNamesCalls    int
	listVersionsCalls int
}

func (s *fakeSource) ListPackageNames() ([]string, error) {
	s.listNamesCalls++
	names := make([]string, 0, len(s.packages))
	for name := range s.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeSource) ListVersions(name string) ([]string, error) {
	s.listVersionsCalls++
	versions, ok := s.packages[name]
	if !ok {
		return nil, fmt.Errorf("unknown package %q", name)
	}
	return versions, nil
}

func staticLoader(meta map[string]*opam.Metadata) Loader {
	return func(name string, version opam.Version) (*opam.Metadata, error) {
		if m, ok := meta[name+"."+string(version)]; ok {
			return m, nil
		}
		return &opam.Metadata{Synopsis: opam.DefaultSynopsis}, nil
	}
}

func mustBuild(t *testing.T, src Source, load Loader) *PackageIndex {
	t.Helper()
	ix, err := Build(src, load)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return ix
}

func TestBuild_RoundTrip(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"lwt":  {"5.6.0", "5.7.0", "4.0.0"},
		"dune": {"3.0.0"},
	}}
	ix := mustBuild(t, src, staticLoader(nil))

	if ix.Len() != 2 {
		t.Fatalf("expected 2 packages, got %d", ix.Len())
	}

	// Every listed version appears in the index and vice versa.
	for name, raws := range src.packages {
		got, ok := ix.VersionsOf(name)
		if !ok {
			t.Fatalf("expected versions for %q", name)
		}
		if len(got) != len(raws) {
			t.Fatalf("%s: expected %d versions, got %d", name, len(raws), len(got))
		}
		want := make(map[opam.Version]bool, len(raws))
		for _, raw := range raws {
			want[opam.Version(raw)] = true
		}
		for _, v := range got {
			if !want[v] {
				t.Errorf("%s: unexpected version %s", name, v)
			}
		}
	}
}

func TestBuild_SkipsInvalidIdentifiers(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"lwt":      {"5.7.0", "not a version!"},
		"bad name": {"1.0.0"},
	}}
	ix := mustBuild(t, src, staticLoader(nil))

	if ix.Len() != 1 {
		t.Fatalf("expected 1 package, got %d", ix.Len())
	}
	versions, ok := ix.VersionsOf("lwt")
	if !ok || len(versions) != 1 || versions[0] != "5.7.0" {
		t.Errorf("expected only the valid version, got %v", versions)
	}
	if _, ok := ix.VersionsOf("bad name"); ok {
		t.Error("invalid package name should be skipped entirely")
	}
}

func TestBuild_IsLazy(t *testing.T) {
	loads := 0
	src := &fakeSource{packages: map[string][]string{
		"lwt": {"5.6.0", "5.7.0"},
	}}
	ix := mustBuild(t, src, func(name string, v opam.Version) (*opam.Metadata, error) {
		loads++
		return &opam.Metadata{}, nil
	})

	if loads != 0 {
		t.Fatalf("Build must not invoke the loader, got %d calls", loads)
	}

	pkg, ok := ix.LatestOf("lwt")
	if !ok {
		t.Fatal("expected lwt")
	}
	if _, err := pkg.Meta.Force(); err != nil {
		t.Fatalf("Force failed: %v", err)
	}
	if loads != 1 {
		t.Errorf("expected 1 load after one Force, got %d", loads)
	}
}

func TestLatestOf_IsMaxOfVersionsOf(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"lwt":   {"5.6.0", "5.7.0", "5.7.0~rc1", "4.0.0"},
		"zed":   {"1.0"},
		"octez": {"19.1", "20.0~beta2", "20.0"},
	}}
	ix := mustBuild(t, src, staticLoader(nil))

	for name := range src.packages {
		versions, ok := ix.VersionsOf(name)
		if !ok || len(versions) == 0 {
			t.Fatalf("expected versions for %q", name)
		}
		max := versions[0]
		for _, v := range versions[1:] {
			if max.Less(v) {
				max = v
			}
		}

		pkg, ok := ix.LatestOf(name)
		if !ok {
			t.Fatalf("LatestOf(%q) should exist", name)
		}
		if pkg.Version != max {
			t.Errorf("LatestOf(%q) = %s, want %s", name, pkg.Version, max)
		}
	}

	if _, ok := ix.LatestOf("unknown"); ok {
		t.Error("LatestOf of unknown name should be absent")
	}
}

func TestLatestOf_PrereleaseOrdering(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"octez": {"20.0", "20.0~beta2", "20.0~rc1"},
	}}
	ix := mustBuild(t, src, staticLoader(nil))

	pkg, _ := ix.LatestOf("octez")
	if pkg.Version != "20.0" {
		t.Errorf("expected release to outrank ~ prereleases, got %s", pkg.Version)
	}
}

func TestExact(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"lwt": {"5.6.0", "5.7.0"},
	}}
	ix := mustBuild(t, src, staticLoader(map[string]*opam.Metadata{
		"lwt.5.6.0": {Synopsis: "older"},
	}))

	pkg, ok := ix.Exact("lwt", "5.6.0")
	if !ok {
		t.Fatal("expected lwt.5.6.0")
	}
	meta, err := pkg.Meta.Force()
	if err != nil {
		t.Fatalf("Force failed: %v", err)
	}
	if meta.Synopsis != "older" {
		t.Errorf("unexpected synopsis %q", meta.Synopsis)
	}

	if _, ok := ix.Exact("lwt", "9.9.9"); ok {
		t.Error("unknown version should be absent")
	}
	if _, ok := ix.Exact("nope", "5.6.0"); ok {
		t.Error("unknown name should be absent")
	}
}

func TestAllLatest_NameOrder(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"zarith": {"1.13"},
		"astring": {"0.8.5"},
		"lwt":    {"5.7.0"},
	}}
	ix := mustBuild(t, src, staticLoader(nil))

	got := ix.AllLatest()
	want := []string{"astring", "lwt", "zarith"}
	if len(got) != len(want) {
		t.Fatalf("expected %d packages, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, got[i].Name)
		}
	}
}

func TestUnparsableDefinition_StaysListed(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"broken": {"1.0"},
		"fine":   {"1.0"},
	}}
	ix := mustBuild(t, src, func(name string, v opam.Version) (*opam.Metadata, error) {
		if name == "broken" {
			return nil, &opam.ParseError{Line: 1, Msg: "malformed"}
		}
		return &opam.Metadata{Synopsis: "ok"}, nil
	})

	// The broken package is still listed.
	if _, ok := ix.VersionsOf("broken"); !ok {
		t.Fatal("broken package must still be listed")
	}
	if len(ix.AllLatest()) != 2 {
		t.Fatalf("expected both packages in AllLatest")
	}

	// Forcing it surfaces the parse error.
	pkg, _ := ix.LatestOf("broken")
	if _, err := pkg.Meta.Force(); !opam.IsParseError(err) {
		t.Errorf("expected parse error, got %v", err)
	}

	// Siblings remain fully queryable.
	sibling, _ := ix.LatestOf("fine")
	meta, err := sibling.Meta.Force()
	if err != nil {
		t.Fatalf("sibling Force failed: %v", err)
	}
	if meta.Synopsis != "ok" {
		t.Errorf("unexpected sibling synopsis %q", meta.Synopsis)
	}
}

func TestEmpty(t *testing.T) {
	ix := Empty()
	if ix.Len() != 0 {
		t.Errorf("expected empty index, got %d packages", ix.Len())
	}
	if got := ix.AllLatest(); len(got) != 0 {
		t.Errorf("expected no packages, got %d", len(got))
	}
	if _, ok := ix.VersionsOf("lwt"); ok {
		t.Error("empty index should know no names")
	}
}

func TestVersionStore_MaxVersionEmpty(t *testing.T) {
	s := newVersionStore()
	if _, ok := s.MaxVersion(); ok {
		t.Error("MaxVersion of empty store must report absence")
	}
}

func TestConcurrentForcesAcrossReaders(t *testing.T) {
	src := &fakeSource{packages: map[string][]string{
		"a": {"1.0"}, "b": {"1.0"}, "c": {"1.0"},
	}}
	ix := mustBuild(t, src, staticLoader(nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, pkg := range ix.AllLatest() {
				if _, err := pkg.Meta.Force(); err != nil {
					t.Errorf("Force failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
}
