package search

import (
	"testing"

	"github.com/brycenichols/ocaml.org/index"
	"github.com/brycenichols/ocaml.org/opam"
)

func TestBleveSearcher_MatchesAnyQueryTerm(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Synopsis: "Monadic promises and concurrent I/O"}),
		makePackage("zarith", &opam.Metadata{Synopsis: "Arbitrary-precision arithmetic"}),
	}

	// No candidate contains the query as one substring; the full-text
	// searcher matches on the individual terms.
	got := NewBleveSearcher(BleveConfig{}).Search("concurrent promises", candidates)
	assertOrder(t, got, "lwt")
}

func TestBleveSearcher_NameMatchRanksFirst(t *testing.T) {
	candidates := []index.Package{
		makePackage("ssl", &opam.Metadata{Synopsis: "Bindings built on lwt"}),
		makePackage("lwt", &opam.Metadata{Synopsis: "Cooperative promises"}),
	}

	got := NewBleveSearcher(BleveConfig{}).Search("lwt", candidates)
	assertOrder(t, got, "lwt", "ssl")
}

func TestBleveSearcher_MatchesTags(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Tags: []string{"async", "threads"}}),
		makePackage("zarith", &opam.Metadata{Tags: []string{"math"}}),
	}

	got := NewBleveSearcher(BleveConfig{}).Search("async", candidates)
	assertOrder(t, got, "lwt")
}

func TestBleveSearcher_BrokenMetadataIndexedByName(t *testing.T) {
	candidates := []index.Package{
		makeBrokenPackage("badpkg"),
		makePackage("lwt", &opam.Metadata{Synopsis: "Cooperative promises"}),
	}

	got := NewBleveSearcher(BleveConfig{}).Search("badpkg", candidates)
	assertOrder(t, got, "badpkg")
}

func TestBleveSearcher_MaxResults(t *testing.T) {
	candidates := []index.Package{
		makePackage("a", &opam.Metadata{Tags: []string{"async"}}),
		makePackage("b", &opam.Metadata{Tags: []string{"async"}}),
		makePackage("c", &opam.Metadata{Tags: []string{"async"}}),
	}

	got := NewBleveSearcher(BleveConfig{MaxResults: 2}).Search("async", candidates)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", names(got))
	}
}

func TestBleveSearcher_RebuildOnlyWhenCandidatesChange(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Synopsis: "Cooperative promises"}),
	}

	s := NewBleveSearcher(BleveConfig{})
	s.Search("lwt", candidates)
	built := s.idx

	// Same candidates, different pattern: the index is reused.
	s.Search("promises", candidates)
	if s.idx != built {
		t.Error("index rebuilt for unchanged candidates")
	}

	// A changed candidate set invalidates the fingerprint.
	s.Search("lwt", append(candidates,
		makePackage("zarith", &opam.Metadata{Synopsis: "Arbitrary-precision arithmetic"})))
	if s.idx == built {
		t.Error("index not rebuilt for changed candidates")
	}
}

func TestProgressive_FullTextAnswersFreeFormQueries(t *testing.T) {
	candidates := []index.Package{
		makePackage("lwt", &opam.Metadata{Synopsis: "Monadic promises and concurrent I/O"}),
	}

	p := NewProgressive(NewRanker(), NewBleveSearcher(BleveConfig{}))

	// The tiered ranker has no substring match for the reordered phrase;
	// the full-text fallback still finds the package.
	got := p.Search("concurrent promises", candidates)
	assertOrder(t, got, "lwt")
}
