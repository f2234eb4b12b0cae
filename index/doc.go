// Package index holds the in-memory package index: the mapping from package
// names to versions to lazily materialized metadata.
//
// # Structure
//
// A [PackageIndex] maps names to [VersionStore] values; a VersionStore maps
// versions to [Handle] values. A Handle is a compute-once cell: the
// definition file behind it is parsed on first access and the result is
// memoized for the handle's lifetime. Thousands of versions exist per
// repository snapshot and only a small fraction are ever queried in a given
// run, so eager parsing of all of them would be wasted work.
//
// # Immutability
//
// An index never changes after [Build] returns. The refresh loop publishes
// a whole new index through an atomic pointer swap; readers that fetched
// the old reference keep using it, fully valid, until they re-fetch. This
// removes the need for reader-side locking entirely:
//
//	ix, err := index.Build(source, loader)
//	for _, pkg := range ix.AllLatest() {
//	    meta, err := pkg.Meta.Force()
//	    ...
//	}
//
// # Failure containment
//
// A malformed definition file does not fail Build and does not hide the
// package: the parse error is cached in the handle and surfaced to whoever
// forces it, while every sibling stays fully queryable. Invalid name and
// version strings are logged and skipped at build time.
package index
