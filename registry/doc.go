// Package registry provides the high-level package index facade.
//
// Registry combines the repository source, the in-memory index, and the
// search strategy into a unified API: a background refresh loop keeps an
// atomically swapped index snapshot current, and the query layer serves
// lookups and ranked search from whatever snapshot is published.
//
// The refresh loop pulls the repository clone on a fixed interval and only
// rebuilds when the upstream head moved since the last successful sync. A
// rebuild never mutates the published snapshot: the new index is built
// aside and swapped in atomically, so in-flight readers finish on the
// snapshot they started with.
//
// The registry is served three ways: as MCP tools over stdio or streamable
// HTTP (NewMCPServer, ServeStdio, MCPHandler), and as a plain JSON API
// (HTTPHandler).
//
// Example usage:
//
//	source := repo.New("https://github.com/ocaml/opam-repository.git", dir)
//	reg := registry.New(registry.Config{
//	    PollInterval: 5 * time.Minute,
//	    ServerInfo:   registry.ServerInfo{Name: "opam-index", Version: "1.0.0"},
//	}, source)
//
//	ctx := context.Background()
//	reg.Start(ctx)
//	defer reg.Stop()
//
//	for _, pkg := range reg.Search("http server") {
//	    fmt.Println(pkg.Name, pkg.Version)
//	}
package registry
