package docs

import (
	"encoding/json"
	"fmt"
)

// TocEntry is one node of a documentation table of contents. Children nest
// arbitrarily deep.
type TocEntry struct {
	Title    string     `json:"title"`
	Href     string     `json:"href"`
	Children []TocEntry `json:"children,omitempty"`
}

// Status describes the build state of one package version's documentation
// as reported by the upstream status document.
type Status struct {
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}

// DecodeToc decodes the upstream table-of-contents document, a JSON array
// of recursively nested entries.
func DecodeToc(raw []byte) ([]TocEntry, error) {
	var entries []TocEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decoding table of contents: %w", err)
	}
	return entries, nil
}

// DecodeStatus decodes the upstream status document.
func DecodeStatus(raw []byte) (*Status, error) {
	var s Status
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding status document: %w", err)
	}
	return &s, nil
}

// Flatten returns the entries of a table of contents in document order,
// depth first.
func Flatten(entries []TocEntry) []TocEntry {
	var out []TocEntry
	var walk func([]TocEntry)
	walk = func(es []TocEntry) {
		for _, e := range es {
			children := e.Children
			e.Children = nil
			out = append(out, e)
			walk(children)
		}
	}
	walk(entries)
	return out
}
