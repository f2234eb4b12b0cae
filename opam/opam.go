// Package opam provides the package metadata model and the definition-file
// loader for opam repositories.
//
// The central type is [Metadata], the parsed descriptive metadata of one
// package version. [Parse] turns the raw bytes of an opam definition file
// into a Metadata; it is the only place definition files are interpreted,
// and callers are expected to invoke it lazily (see the index package).
package opam

import (
	"errors"
	"fmt"

	"github.com/brycenichols/ocaml.org/users"
)

// DefaultSynopsis is used when a definition file carries no synopsis field.
const DefaultSynopsis = "No synopsis available"

// Metadata is the parsed descriptive metadata of one package version.
type Metadata struct {
	Synopsis    string       `json:"synopsis"`
	Description string       `json:"description,omitempty"`
	Maintainers []users.User `json:"maintainers,omitempty"`
	Authors     []users.User `json:"authors,omitempty"`
	License     string       `json:"license,omitempty"`
	Homepage    []string     `json:"homepage,omitempty"`
	Tags        []string     `json:"tags,omitempty"`

	// Dependency relations, each flattened from the definition file's
	// boolean formula into (name, constraint text) pairs.
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Depopts      []Dependency `json:"depopts,omitempty"`
	Conflicts    []Dependency `json:"conflicts,omitempty"`

	// Source describes the upstream archive, when the definition has a
	// url section.
	Source *Source `json:"source,omitempty"`
}

// Dependency is one flattened dependency relation entry. Constraint is the
// pretty-printed formula text, empty when the relation is unconstrained.
// Entries that are alternatives to the preceding entry carry a "|" prefix
// in their constraint text.
type Dependency struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint,omitempty"`
}

// Source describes where a package's release archive comes from.
type Source struct {
	URL       string   `json:"url"`
	Checksums []string `json:"checksums,omitempty"`
}

// ResolveUsers re-resolves the metadata's maintainers and authors against
// dir, keeping the bare-name fallback for anyone the directory does not
// know. Parse fills both fields with fallback users only.
func (m *Metadata) ResolveUsers(dir users.Directory) {
	for i, u := range m.Maintainers {
		if known, ok := dir.FindByName(u.Name); ok {
			m.Maintainers[i] = known
		}
	}
	for i, u := range m.Authors {
		if known, ok := dir.FindByName(u.Name); ok {
			m.Authors[i] = known
		}
	}
}

// ParseError reports a malformed definition file. It is surfaced lazily, to
// whichever caller first forces the entry's metadata, never at index build
// time.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("opam: parse error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("opam: parse error: %s", e.Msg)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// InvalidIdentifierError reports a package name or version string that does
// not parse as a valid identifier. Offending entries are skipped during
// index construction; they never abort a build.
type InvalidIdentifierError struct {
	Kind  string // "name" or "version"
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("opam: invalid %s %q", e.Kind, e.Value)
}
