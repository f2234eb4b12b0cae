package search

import (
	"testing"

	"github.com/brycenichols/ocaml.org/index"
	"github.com/brycenichols/ocaml.org/opam"
)

func makePackage(name string, meta *opam.Metadata) index.Package {
	return index.Package{
		Name:    name,
		Version: "1.0.0",
		Meta: index.NewHandle(func() (*opam.Metadata, error) {
			return meta, nil
		}),
	}
}

func makeBrokenPackage(name string) index.Package {
	return index.Package{
		Name:    name,
		Version: "1.0.0",
		Meta: index.NewHandle(func() (*opam.Metadata, error) {
			return nil, &opam.ParseError{Msg: "malformed"}
		}),
	}
}

func names(pkgs []index.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

func assertOrder(t *testing.T, got []index.Package, want ...string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotNames)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotNames)
		}
	}
}

func TestRanker_NameMatchOutranksTagMatch(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Synopsis: "cooperative threads", Tags: []string{"async"}}),
		makePackage("async_kernel", &opam.Metadata{Synopsis: "core async"}),
	}

	got := NewRanker().Search("async", candidates)

	// "async_kernel" scores 0 (name contains), "lwt" scores 1 (tag match).
	assertOrder(t, got, "async_kernel", "lwt")
}

func TestRanker_ExactNameOutranksSubstring(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt_ssl", &opam.Metadata{}),
		makePackage("lwt", &opam.Metadata{}),
	}

	got := NewRanker().Search("lwt", candidates)

	assertOrder(t, got, "lwt", "lwt_ssl")
}

func TestRanker_TierOrder(t *testing.T) {
	candidates := []index.Package{
		makePackage("e-description", &opam.Metadata{Description: "mentions threads here"}),
		makePackage("d-synopsis", &opam.Metadata{Synopsis: "threads for everyone"}),
		makePackage("c-tagged", &opam.Metadata{Tags: []string{"threads"}}),
		makePackage("b-threads-suffix", &opam.Metadata{}),
		makePackage("threads", &opam.Metadata{}),
	}

	got := NewRanker().Search("threads", candidates)

	assertOrder(t, got,
		"threads",          // exact name
		"b-threads-suffix", // name contains
		"c-tagged",         // tag contains
		"d-synopsis",       // synopsis contains
		"e-description",    // description contains
	)
}

func TestRanker_ExcludesNonMatches(t *testing.T) {
	candidates := []index.Package{
		makePackage("zarith", &opam.Metadata{Synopsis: "arbitrary-precision arithmetic"}),
		makePackage("lwt", &opam.Metadata{Tags: []string{"async"}}),
	}

	got := NewRanker().Search("async", candidates)

	assertOrder(t, got, "lwt")
}

func TestRanker_CaseInsensitive(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Synopsis: "Cooperative Threads"}),
	}

	got := NewRanker().Search("THREADS", candidates)
	assertOrder(t, got, "lwt")
}

func TestRanker_PatternInsideTag(t *testing.T) {
	// The pattern must appear inside the tag text, not the other way
	// around.
	candidates := []index.Package{
		makePackage("a", &opam.Metadata{Tags: []string{"networking"}}),
		makePackage("b", &opam.Metadata{Tags: []string{"net"}}),
	}

	if got := NewRanker().Search("net", candidates); len(got) != 2 {
		t.Errorf("pattern 'net' should match both tags, got %v", names(got))
	}
	if got := NewRanker().Search("networking", candidates); len(got) != 1 || got[0].Name != "a" {
		t.Errorf("pattern 'networking' should match only the longer tag, got %v", names(got))
	}
}

func TestRanker_StableWithinTier(t *testing.T) {
	candidates := []index.Package{
		makePackage("async_a", &opam.Metadata{}),
		makePackage("async_b", &opam.Metadata{}),
		makePackage("async_c", &opam.Metadata{}),
	}

	got := NewRanker().Search("async", candidates)
	assertOrder(t, got, "async_a", "async_b", "async_c")
}

func TestRanker_BrokenMetadataStillMatchesByName(t *testing.T) {
	candidates := []index.Package{
		makeBrokenPackage("async_broken"),
		makePackage("lwt", &opam.Metadata{Tags: []string{"async"}}),
	}

	got := NewRanker().Search("async", candidates)
	assertOrder(t, got, "async_broken", "lwt")
}

func TestProgressive_FallsBackWhenPrimaryEmpty(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Synopsis: "cooperative threads"}),
	}

	fallback := searcherFunc(func(pattern string, pkgs []index.Package) []index.Package {
		return pkgs
	})
	p := NewProgressive(NewRanker(), fallback)

	// Primary finds a match: fallback never consulted.
	if got := p.Search("threads", candidates); len(got) != 1 {
		t.Errorf("expected primary result, got %v", names(got))
	}

	// Primary finds nothing: fallback answers.
	if got := p.Search("zzz-no-substring", candidates); len(got) != 1 {
		t.Errorf("expected fallback result, got %v", names(got))
	}
}

type searcherFunc func(string, []index.Package) []index.Package

func (f searcherFunc) Search(pattern string, pkgs []index.Package) []index.Package {
	return f(pattern, pkgs)
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	a := []Doc{{Name: "lwt", Synopsis: "threads"}}
	b := []Doc{{Name: "lwt", Synopsis: "promises"}}

	if computeFingerprint(a) == computeFingerprint(b) {
		t.Error("fingerprint should change with content")
	}
	if computeFingerprint(a) != computeFingerprint(a) {
		t.Error("fingerprint should be stable")
	}
}

func TestFingerprint_TagOrderIndependent(t *testing.T) {
	a := []Doc{{Name: "lwt", Tags: []string{"async", "threads"}}}
	b := []Doc{{Name: "lwt", Tags: []string{"threads", "async"}}}

	if computeFingerprint(a) != computeFingerprint(b) {
		t.Error("fingerprint should not depend on tag order")
	}
}
