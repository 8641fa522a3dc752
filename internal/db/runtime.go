// Package db is a generic dependency-tracked memoizing cache: the evaluation
// engine underneath the program database. Query tables memoize derived values
// together with the inputs they read; after an input changes, only the
// affected subgraph recomputes, and a recompute that produces an equal value
// keeps its old changed-at revision so dependents can stop early.
//
// The engine is built around a single-writer model. The canonical Runtime has
// one logical writer (Mutate) and any number of guarded readers. A pending
// write raises the cooperative cancellation signal: in-flight evaluations
// observe it at their next CheckCancelled and unwind with ErrCancelled,
// letting the writer proceed. Snapshots are frozen branches: they never
// mutate and never cancel, so reads on them are wait-free with respect to
// writes on the origin.
package db

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Revision counts input-state changes. Every Mutate bumps it by one.
type Revision uint64

var (
	// ErrCancelled reports that an evaluation was interrupted by a
	// concurrent input mutation. It is transient: callers retry once the
	// new state has settled. It is never cached and never retried by the
	// engine itself.
	ErrCancelled = errors.New("db: evaluation cancelled by pending write")

	// ErrSnapshot reports a mutation attempt on a frozen snapshot runtime.
	ErrSnapshot = errors.New("db: runtime is a frozen snapshot")
)

// Runtime owns the revision counter, the reader/writer exclusion lock, and
// the pending-write signal shared by every query table and input cell
// registered against it.
type Runtime struct {
	mu      sync.RWMutex
	rev     atomic.Uint64
	pending atomic.Int32
	frozen  bool
}

// NewRuntime returns a canonical (writable) runtime at revision 1.
func NewRuntime() *Runtime {
	rt := &Runtime{}
	rt.rev.Store(1)
	return rt
}

// Revision returns the current input revision.
func (rt *Runtime) Revision() Revision {
	return Revision(rt.rev.Load())
}

// CheckCancelled returns ErrCancelled while a write is pending on a
// canonical runtime. Frozen snapshots never cancel. Query computations call
// this at well-defined points; the error must propagate untouched to the
// outermost guard.
func (rt *Runtime) CheckCancelled() error {
	if rt.frozen {
		return nil
	}
	if rt.pending.Load() > 0 {
		return ErrCancelled
	}
	return nil
}

// BeginRead enters a guarded read section. The writer waits for all guarded
// readers to unwind before applying a mutation, so everything observed
// between BeginRead and EndRead belongs to a single revision.
func (rt *Runtime) BeginRead() {
	rt.mu.RLock()
}

// EndRead leaves a guarded read section.
func (rt *Runtime) EndRead() {
	rt.mu.RUnlock()
}

// Mutate is the single-writer entry point. It raises the cancellation
// signal, waits for in-flight guarded readers to unwind, bumps the revision,
// and applies the closure while holding the write lock. Input cells and the
// virtual file system must only change inside apply.
func (rt *Runtime) Mutate(apply func()) error {
	if rt.frozen {
		return ErrSnapshot
	}
	rt.pending.Add(1)
	rt.mu.Lock()
	rt.rev.Add(1)
	apply()
	rt.pending.Add(-1)
	rt.mu.Unlock()
	return nil
}

// Snapshot returns a frozen runtime pinned at the current revision. The
// caller is responsible for bracketing the call with BeginRead/EndRead so the
// revision and any state branched alongside it belong to the same instant.
func (rt *Runtime) Snapshot() *Runtime {
	s := &Runtime{frozen: true}
	s.rev.Store(rt.rev.Load())
	return s
}
