package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/brycenichols/ocaml.org/docs"
	"github.com/brycenichols/ocaml.org/index"
	"github.com/brycenichols/ocaml.org/opam"
	"github.com/brycenichols/ocaml.org/search"
	"github.com/brycenichols/ocaml.org/users"
)

// Source is the repository collaborator the registry syncs against and
// reads package definitions from. repo.Repository satisfies it.
type Source interface {
	index.Source

	// Exists reports whether a local clone is already present.
	Exists() bool
	// Clone creates the local clone from the upstream.
	Clone(ctx context.Context) error
	// Pull brings the local clone up to date with the upstream.
	Pull(ctx context.Context) error
	// LastCommit returns the identifier of the clone's current head.
	LastCommit(ctx context.Context) (string, error)
	// ReadDefinition returns the raw definition of one package version.
	ReadDefinition(name, version string) (string, error)
}

// Config configures a Registry.
type Config struct {
	// PollInterval is the period of the background refresh loop.
	PollInterval time.Duration
	// PullTimeout bounds each git operation during a refresh.
	PullTimeout time.Duration
	// WarmConcurrency bounds parallelism in Warm. Zero means 8.
	WarmConcurrency int
	// ServerInfo names this server toward MCP clients.
	ServerInfo ServerInfo
	// Searcher overrides the default tiered ranker.
	Searcher search.Searcher
	// Users resolves maintainer and author names. Nil disables
	// directory lookup; bare-name fallback still applies.
	Users users.Directory
	// Docs proxies documentation pages from the upstream artifact host.
	// Nil disables the /docs routes.
	Docs *docs.Proxy
}

// ServerInfo describes this server in the MCP initialize response.
type ServerInfo struct {
	Name    string
	Version string
}

// Registry is the high-level package index facade. It owns the repository
// source, the current index snapshot, the background refresh loop and the
// searcher. All query methods read the snapshot current at call time;
// readers holding an older snapshot are unaffected by a concurrent refresh.
type Registry struct {
	source   Source
	searcher search.Searcher
	config   Config

	current atomic.Pointer[index.PackageIndex]

	// syncMu serializes refresh cycles: the loop and Sync callers never
	// run git operations against the clone concurrently.
	syncMu sync.Mutex

	mu             sync.Mutex
	lastSeenCommit string
	started        bool
	stopCh         chan struct{}
	done           chan struct{}
}

// New creates a Registry over source. The registry starts with an empty
// snapshot; queries are valid (and empty) before the first sync completes.
func New(cfg Config, source Source) *Registry {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.PullTimeout <= 0 {
		cfg.PullTimeout = 2 * time.Minute
	}
	searcher := cfg.Searcher
	if searcher == nil {
		searcher = search.NewRanker()
	}

	r := &Registry{
		source:   source,
		searcher: searcher,
		config:   cfg,
	}
	r.current.Store(index.Empty())
	return r
}

// Start begins the refresh loop. When a local clone already exists the
// first sync runs synchronously so queries see real data immediately;
// otherwise the initial clone happens in the background and startup does
// not block on the network.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.stopCh = make(chan struct{})
	r.done = make(chan struct{})
	r.mu.Unlock()

	if r.source.Exists() {
		if err := r.sync(ctx); err != nil {
			log.Printf("registry: initial sync failed: %v", err)
		}
	}

	go r.loop()
	return nil
}

// Stop terminates the refresh loop and waits for it to exit. Queries stay
// valid after Stop; they serve the last published snapshot.
func (r *Registry) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	close(r.stopCh)
	done := r.done
	r.mu.Unlock()

	<-done
	return nil
}

func (r *Registry) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	// A missing clone is created on the first tick rather than at Start.
	if !r.source.Exists() {
		if err := r.sync(context.Background()); err != nil {
			log.Printf("registry: sync failed: %v", err)
		}
	}

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if err := r.sync(context.Background()); err != nil {
				log.Printf("registry: sync failed: %v", err)
			}
		}
	}
}

// Sync forces one refresh cycle outside the loop's schedule. One-shot
// consumers use it to guarantee a populated snapshot before querying.
func (r *Registry) Sync(ctx context.Context) error {
	return r.sync(ctx)
}

// sync brings the clone up to date and publishes a new snapshot when the
// upstream moved. Any failure leaves the current snapshot untouched; the
// next tick retries from scratch.
func (r *Registry) sync(ctx context.Context) error {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.config.PullTimeout)
	defer cancel()

	if !r.source.Exists() {
		if err := r.source.Clone(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrSyncFailed, err)
		}
	} else if err := r.source.Pull(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	commit, err := r.source.LastCommit(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	r.mu.Lock()
	unchanged := commit == r.lastSeenCommit && r.lastSeenCommit != ""
	r.mu.Unlock()
	if unchanged {
		return nil
	}

	idx, err := index.Build(r.source, r.loader())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}

	r.current.Store(idx)
	r.mu.Lock()
	r.lastSeenCommit = commit
	r.mu.Unlock()

	log.Printf("registry: indexed %d packages at commit %s", idx.Len(), commit)
	return nil
}

// loader builds the metadata loader handed to index.Build. Parsing happens
// at force time, never during the build itself.
func (r *Registry) loader() index.Loader {
	return func(name string, version opam.Version) (*opam.Metadata, error) {
		raw, err := r.source.ReadDefinition(name, string(version))
		if err != nil {
			return nil, err
		}
		meta, err := opam.Parse([]byte(raw))
		if err != nil {
			return nil, err
		}
		if r.config.Users != nil {
			meta.ResolveUsers(r.config.Users)
		}
		return meta, nil
	}
}

// Snapshot returns the current index snapshot. The returned index is
// immutable and stays valid across later refreshes.
func (r *Registry) Snapshot() *index.PackageIndex {
	return r.current.Load()
}

// AllLatest returns the latest version of every package, name order.
func (r *Registry) AllLatest() []index.Package {
	return r.current.Load().AllLatest()
}

// VersionsOf returns every version of one package, ascending.
func (r *Registry) VersionsOf(name string) ([]opam.Version, error) {
	versions, ok := r.current.Load().VersionsOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	return versions, nil
}

// LatestOf returns the latest version of one package.
func (r *Registry) LatestOf(name string) (index.Package, error) {
	pkg, ok := r.current.Load().LatestOf(name)
	if !ok {
		return index.Package{}, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	return pkg, nil
}

// Exact returns one specific package version.
func (r *Registry) Exact(name string, version opam.Version) (index.Package, error) {
	pkg, ok := r.current.Load().Exact(name, version)
	if !ok {
		return index.Package{}, fmt.Errorf("%w: %s.%s", ErrVersionNotFound, name, version)
	}
	return pkg, nil
}

// Search ranks the latest version of every package against pattern.
func (r *Registry) Search(pattern string) []index.Package {
	return r.searcher.Search(pattern, r.current.Load().AllLatest())
}

// GetMetadata forces and returns the metadata of one package version.
func (r *Registry) GetMetadata(name string, version opam.Version) (*opam.Metadata, error) {
	pkg, err := r.Exact(name, version)
	if err != nil {
		return nil, err
	}
	return pkg.Meta.Force()
}

// Warm forces the metadata of every latest package version with bounded
// parallelism. The first search over a fresh snapshot otherwise pays the
// whole materialization cost; Warm makes that cost schedulable. Individual
// load failures are not errors here, they resurface on later forces.
func (r *Registry) Warm(ctx context.Context) error {
	concurrency := r.config.WarmConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	p := pool.New().WithMaxGoroutines(concurrency).WithContext(ctx)
	for _, pkg := range r.current.Load().AllLatest() {
		handle := pkg.Meta
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, _ = handle.Force()
			return nil
		})
	}
	return p.Wait()
}

// RegistryStats summarizes the current snapshot.
type RegistryStats struct {
	Packages   int
	Versions   int
	LastCommit string
}

// Stats returns statistics over the current snapshot.
func (r *Registry) Stats() RegistryStats {
	idx := r.current.Load()

	versions := 0
	for _, pkg := range idx.AllLatest() {
		if vs, ok := idx.VersionsOf(pkg.Name); ok {
			versions += len(vs)
		}
	}

	r.mu.Lock()
	commit := r.lastSeenCommit
	r.mu.Unlock()

	return RegistryStats{
		Packages:   idx.Len(),
		Versions:   versions,
		LastCommit: commit,
	}
}

// HealthCheck returns nil when the refresh loop is running.
func (r *Registry) HealthCheck(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return ErrNotStarted
	}
	return nil
}
