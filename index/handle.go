package index

import (
	"sync"
	"sync/atomic"

	"github.com/brycenichols/ocaml.org/opam"
)

// HandleState is the lifecycle state of a metadata handle.
type HandleState int32

const (
	// StateUnforced means the loader has never been invoked.
	StateUnforced HandleState = iota
	// StateForcing means at least one caller is running the loader.
	StateForcing
	// StateForced means the metadata is materialized and cached.
	StateForced
	// StateFailed means the loader failed; the error is cached.
	StateFailed
)

// LoadFunc materializes the metadata of one package version.
type LoadFunc func() (*opam.Metadata, error)

// Handle is a compute-once cell for one version's metadata. The loader runs
// on first Force and its outcome, success or failure, is memoized for the
// handle's lifetime. Handles are never invalidated individually; stale
// metadata is discarded only by dropping the whole enclosing index.
//
// Forcing is safe to race: two concurrent callers may both invoke the
// loader, the first to publish wins, and both observe the published
// outcome.
type Handle struct {
	state atomic.Int32
	mu    sync.Mutex
	value *opam.Metadata
	err   error
	load  LoadFunc
}

// NewHandle creates an unforced handle around load.
func NewHandle(load LoadFunc) *Handle {
	return &Handle{load: load}
}

// Force materializes the metadata, invoking the loader on first call and
// returning the memoized outcome on every call after that.
func (h *Handle) Force() (*opam.Metadata, error) {
	switch HandleState(h.state.Load()) {
	case StateForced:
		return h.value, nil
	case StateFailed:
		return nil, h.err
	}

	h.state.CompareAndSwap(int32(StateUnforced), int32(StateForcing))
	value, err := h.load()

	h.mu.Lock()
	switch HandleState(h.state.Load()) {
	case StateForced:
		// A racing caller published first.
		h.mu.Unlock()
		return h.value, nil
	case StateFailed:
		h.mu.Unlock()
		return nil, h.err
	}
	if err != nil {
		h.err = err
		h.state.Store(int32(StateFailed))
	} else {
		h.value = value
		h.state.Store(int32(StateForced))
	}
	h.mu.Unlock()

	return value, err
}

// State returns the handle's current lifecycle state.
func (h *Handle) State() HandleState {
	return HandleState(h.state.Load())
}
