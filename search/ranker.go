package search

import (
	"sort"
	"strings"

	"github.com/brycenichols/ocaml.org/index"
	"github.com/brycenichols/ocaml.org/opam"
)

// Searcher scores and orders candidate packages against a free-text
// pattern. Candidates arrive in the index's iteration order; implementations
// decide inclusion and ranking.
type Searcher interface {
	Search(pattern string, candidates []index.Package) []index.Package
}

// Score tiers, ascending: lower ranks first. A package's score is the first
// tier that matches; a package matching no tier is excluded before scoring.
const (
	scoreExactName   = -1
	scoreName        = 0
	scoreTag         = 1
	scoreSynopsis    = 2
	scoreDescription = 3
)

// Ranker is the tiered substring searcher. An exact name match outranks a
// name substring match, which outranks a tag match, then synopsis, then
// description. Ties keep the candidates' original order.
//
// Evaluating synopsis, description and tags forces each candidate's
// metadata handle, so the first search after a refresh materializes the
// whole candidate set. That cost is deliberate: every later search over the
// same index is pure string matching.
type Ranker struct{}

// NewRanker creates a tiered substring searcher.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Search implements Searcher.
func (r *Ranker) Search(pattern string, candidates []index.Package) []index.Package {
	pattern = strings.ToLower(pattern)

	type scored struct {
		pkg   index.Package
		score int
	}
	matches := make([]scored, 0, len(candidates))

	for _, pkg := range candidates {
		meta, err := pkg.Meta.Force()
		if err != nil {
			// A package with an unparsable definition can still match
			// by name.
			meta = nil
		}
		score, ok := scorePackage(pattern, pkg.Name, metaFields(meta))
		if !ok {
			continue
		}
		matches = append(matches, scored{pkg: pkg, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	out := make([]index.Package, len(matches))
	for i, m := range matches {
		out[i] = m.pkg
	}
	return out
}

type fields struct {
	synopsis    string
	description string
	tags        []string
}

func metaFields(meta *opam.Metadata) fields {
	if meta == nil {
		return fields{}
	}
	return fields{
		synopsis:    meta.Synopsis,
		description: meta.Description,
		tags:        meta.Tags,
	}
}

// scorePackage returns the first matching tier, or ok=false when the
// package matches none. pattern must already be lower-cased.
func scorePackage(pattern, name string, f fields) (int, bool) {
	lower := strings.ToLower(name)
	if lower == pattern {
		return scoreExactName, true
	}
	if strings.Contains(lower, pattern) {
		return scoreName, true
	}
	for _, tag := range f.tags {
		if strings.Contains(strings.ToLower(tag), pattern) {
			return scoreTag, true
		}
	}
	if strings.Contains(strings.ToLower(f.synopsis), pattern) {
		return scoreSynopsis, true
	}
	if strings.Contains(strings.ToLower(f.description), pattern) {
		return scoreDescription, true
	}
	return 0, false
}
