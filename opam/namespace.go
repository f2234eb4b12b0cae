package opam

// Namespace distinguishes the default package namespace from a named
// universe (an alternative package set published alongside the main
// repository). It only influences how documentation URL paths are built.
type Namespace struct {
	universe string
}

// DefaultNamespace is the main package repository.
func DefaultNamespace() Namespace {
	return Namespace{}
}

// NamedNamespace is the universe with the given name.
func NamedNamespace(universe string) Namespace {
	return Namespace{universe: universe}
}

// IsDefault reports whether n is the default namespace.
func (n Namespace) IsDefault() bool {
	return n.universe == ""
}

// Universe returns the universe name, empty for the default namespace.
func (n Namespace) Universe() string {
	return n.universe
}

// DocsPath builds the documentation path prefix for one package version
// within the namespace.
func (n Namespace) DocsPath(name string, v Version) string {
	if n.IsDefault() {
		return "p/" + name + "/" + string(v)
	}
	return "u/" + n.universe + "/p/" + name + "/" + string(v)
}
