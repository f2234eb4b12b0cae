package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/brycenichols/ocaml.org/index"
)

// Doc is the flat view of one package handed to the full-text index.
type Doc struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Synopsis    string   `json:"synopsis"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// BleveConfig customizes field boosts and safety limits of the full-text
// searcher.
type BleveConfig struct {
	// NameBoost boosts name matches. Default: 3.
	NameBoost float64
	// TagsBoost boosts tag matches. Default: 2.
	TagsBoost float64
	// MaxResults caps the number of hits returned. Default: 100.
	MaxResults int
}

func (c BleveConfig) withDefaults() BleveConfig {
	if c.NameBoost == 0 {
		c.NameBoost = 3
	}
	if c.TagsBoost == 0 {
		c.TagsBoost = 2
	}
	if c.MaxResults == 0 {
		c.MaxResults = 100
	}
	return c
}

// BleveSearcher ranks packages with BM25 full-text scoring over their
// forced metadata. It keeps an in-memory bleve index keyed by a fingerprint
// of the candidate set: the index is rebuilt only when the candidates
// change, which in practice means once per refresh cycle.
//
// BleveSearcher is safe for concurrent use.
type BleveSearcher struct {
	cfg BleveConfig

	mu          sync.Mutex
	idx         bleve.Index
	fingerprint string
}

// NewBleveSearcher creates a full-text searcher with the given config.
func NewBleveSearcher(cfg BleveConfig) *BleveSearcher {
	return &BleveSearcher{cfg: cfg.withDefaults()}
}

// Search implements Searcher. Hit order is score descending with name
// ascending as the deterministic tie-break (bleve's own ordering).
func (s *BleveSearcher) Search(pattern string, candidates []index.Package) []index.Package {
	docs := collectDocs(candidates)
	byName := make(map[string]index.Package, len(candidates))
	for _, pkg := range candidates {
		byName[pkg.Name] = pkg
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureIndex(docs); err != nil {
		return nil
	}

	req := bleve.NewSearchRequestOptions(s.buildQuery(pattern), s.cfg.MaxResults, 0, false)
	res, err := s.idx.Search(req)
	if err != nil {
		return nil
	}

	out := make([]index.Package, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if pkg, ok := byName[hit.ID]; ok {
			out = append(out, pkg)
		}
	}
	return out
}

func (s *BleveSearcher) buildQuery(pattern string) query.Query {
	name := bleve.NewMatchQuery(pattern)
	name.SetField("name")
	name.SetBoost(s.cfg.NameBoost)

	tags := bleve.NewMatchQuery(pattern)
	tags.SetField("tags")
	tags.SetBoost(s.cfg.TagsBoost)

	synopsis := bleve.NewMatchQuery(pattern)
	synopsis.SetField("synopsis")

	description := bleve.NewMatchQuery(pattern)
	description.SetField("description")

	return bleve.NewDisjunctionQuery(name, tags, synopsis, description)
}

// ensureIndex rebuilds the bleve index when the candidate fingerprint
// changed. Callers hold s.mu.
func (s *BleveSearcher) ensureIndex(docs []Doc) error {
	fp := computeFingerprint(docs)
	if s.idx != nil && fp == s.fingerprint {
		return nil
	}

	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return fmt.Errorf("creating search index: %w", err)
	}

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.Name, doc); err != nil {
			return fmt.Errorf("indexing %s: %w", doc.Name, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("committing search index: %w", err)
	}

	if s.idx != nil {
		_ = s.idx.Close()
	}
	s.idx = idx
	s.fingerprint = fp
	return nil
}

// collectDocs forces every candidate's metadata into a flat document.
// Packages whose definitions fail to parse are indexed by name only.
func collectDocs(candidates []index.Package) []Doc {
	docs := make([]Doc, 0, len(candidates))
	for _, pkg := range candidates {
		doc := Doc{Name: pkg.Name, Version: string(pkg.Version)}
		if meta, err := pkg.Meta.Force(); err == nil {
			doc.Synopsis = meta.Synopsis
			doc.Description = meta.Description
			doc.Tags = meta.Tags
		}
		docs = append(docs, doc)
	}
	return docs
}
