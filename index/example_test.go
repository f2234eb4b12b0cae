package index_test

import (
	"fmt"

	"github.com/brycenichols/ocaml.org/index"
	"github.com/brycenichols/ocaml.org/opam"
)

type listingSource map[string][]string

func (s listingSource) ListPackageNames() ([]string, error) {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names, nil
}

func (s listingSource) ListVersions(name string) ([]string, error) {
	return s[name], nil
}

func Example() {
	source := listingSource{
		"lwt":  {"5.6.0", "5.7.0"},
		"dune": {"3.14.0"},
	}

	ix, err := index.Build(source, func(name string, v opam.Version) (*opam.Metadata, error) {
		return &opam.Metadata{Synopsis: "synopsis of " + name}, nil
	})
	if err != nil {
		panic(err)
	}

	pkg, _ := ix.LatestOf("lwt")
	meta, _ := pkg.Meta.Force()
	fmt.Println(pkg.Name, pkg.Version, "-", meta.Synopsis)

	for _, p := range ix.AllLatest() {
		fmt.Println(p.Name, p.Version)
	}

	// Output:
	// lwt 5.7.0 - synopsis of lwt
	// dune 3.14.0
	// lwt 5.7.0
}
