package search

import "github.com/brycenichols/ocaml.org/index"

// Progressive combines two search strategies: the primary runs first and
// its results win whenever it finds anything; the fallback only runs when
// the primary comes up empty. The usual pairing is the tiered Ranker as
// primary with the full-text BleveSearcher as fallback, so that exact and
// substring matches keep their deterministic order while free-form queries
// still find something.
type Progressive struct {
	Primary  Searcher
	Fallback Searcher
}

// NewProgressive creates a progressive searcher.
func NewProgressive(primary, fallback Searcher) *Progressive {
	return &Progressive{Primary: primary, Fallback: fallback}
}

// Search implements Searcher.
func (p *Progressive) Search(pattern string, candidates []index.Package) []index.Package {
	if p.Primary != nil {
		if results := p.Primary.Search(pattern, candidates); len(results) > 0 {
			return results
		}
	}
	if p.Fallback == nil {
		return nil
	}
	return p.Fallback.Search(pattern, candidates)
}
