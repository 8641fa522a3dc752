package db

import (
	"fmt"
	"maps"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Dependency is one tracked input of a memoized value. Implementations
// report whether the input changed after the given revision; they may
// revalidate derived state to answer.
type Dependency interface {
	Changed(since Revision) bool
}

// Ctx collects the dependencies read by one query computation. A nil *Ctx is
// valid and records nothing; top-level reads pass nil.
type Ctx struct {
	rt   *Runtime
	deps []Dependency
}

// AddDependency records d as an input of the active computation.
func (c *Ctx) AddDependency(d Dependency) {
	if c != nil {
		c.deps = append(c.deps, d)
	}
}

// Cancelled returns ErrCancelled when a write is pending on the runtime.
// Long computations call this between steps so the writer is never stalled
// behind a full evaluation.
func (c *Ctx) Cancelled() error {
	if c == nil {
		return nil
	}
	return c.rt.CheckCancelled()
}

// Query is a memoizing, dependency-tracked table of derived values keyed by
// K. Values must be immutable once returned: they are shared across callers
// and across snapshot branches.
type Query[K comparable, V any] struct {
	name    string
	rt      *Runtime
	compute func(*Ctx, K) (V, error)
	equal   func(V, V) bool

	mu     sync.Mutex
	memos  map[K]*memo[V]
	flight singleflight.Group
}

// memo records one derived value. verifiedAt is the last revision at which
// the value was known current; changedAt is the revision at which the value
// last actually changed. A memo is immutable after construction: revalidation
// stores a replacement rather than mutating, because snapshot branches share
// memo pointers with their origin.
type memo[V any] struct {
	value      V
	deps       []Dependency
	verifiedAt Revision
	changedAt  Revision
}

// NewQuery registers a memoized query table against rt. compute derives the
// value for a key and reports its reads on the provided Ctx; equal detects
// recomputed-but-unchanged values so dependents can short-circuit.
func NewQuery[K comparable, V any](rt *Runtime, name string, compute func(*Ctx, K) (V, error), equal func(V, V) bool) *Query[K, V] {
	return &Query[K, V]{
		name:    name,
		rt:      rt,
		compute: compute,
		equal:   equal,
		memos:   make(map[K]*memo[V]),
	}
}

// Get returns the value for key, reusing the memoized result when its
// dependencies are unchanged. Errors from compute, cancellation included,
// are never memoized. When parent is non-nil the read is recorded as one of
// the parent computation's dependencies.
func (q *Query[K, V]) Get(parent *Ctx, key K) (V, error) {
	var zero V
	if err := q.rt.CheckCancelled(); err != nil {
		return zero, err
	}
	rev := q.rt.Revision()

	q.mu.Lock()
	m := q.memos[key]
	q.mu.Unlock()

	if m != nil {
		if m.verifiedAt == rev {
			parent.AddDependency(queryDep[K, V]{q: q, key: key})
			return m.value, nil
		}
		if !depsChanged(m.deps, m.verifiedAt) {
			// Inputs untouched since the last verification: backdate the
			// memo to the current revision without recomputing.
			q.put(key, &memo[V]{value: m.value, deps: m.deps, verifiedAt: rev, changedAt: m.changedAt})
			parent.AddDependency(queryDep[K, V]{q: q, key: key})
			return m.value, nil
		}
	}

	v, err, _ := q.flight.Do(fmt.Sprintf("%v", key), func() (any, error) {
		// A concurrent caller may have stored a fresh memo while this
		// goroutine waited on the flight group.
		q.mu.Lock()
		cur := q.memos[key]
		q.mu.Unlock()
		if cur != nil && cur.verifiedAt == rev {
			return cur.value, nil
		}

		child := &Ctx{rt: q.rt}
		val, err := q.compute(child, key)
		if err != nil {
			return nil, err
		}

		changed := rev
		if cur != nil && q.equal(cur.value, val) {
			// Recomputed but unchanged: keep the old value and its
			// changed-at revision so dependents stay valid.
			val = cur.value
			changed = cur.changedAt
		}
		q.put(key, &memo[V]{value: val, deps: child.deps, verifiedAt: rev, changedAt: changed})
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	parent.AddDependency(queryDep[K, V]{q: q, key: key})
	return v.(V), nil
}

// Branch returns a copy-on-write branch of the table bound to a snapshot
// runtime. Memos are shared at the branch instant; values derived afterwards
// on either side stay on their own side. compute is rebound so the branch
// reads the snapshot's inputs, not the origin's.
func (q *Query[K, V]) Branch(rt *Runtime, compute func(*Ctx, K) (V, error)) *Query[K, V] {
	q.mu.Lock()
	memos := maps.Clone(q.memos)
	q.mu.Unlock()
	return &Query[K, V]{
		name:    q.name,
		rt:      rt,
		compute: compute,
		equal:   q.equal,
		memos:   memos,
	}
}

func (q *Query[K, V]) put(key K, m *memo[V]) {
	q.mu.Lock()
	q.memos[key] = m
	q.mu.Unlock()
}

func depsChanged(deps []Dependency, since Revision) bool {
	for _, d := range deps {
		if d.Changed(since) {
			return true
		}
	}
	return false
}

// queryDep makes a memoized value usable as a dependency of another query.
// Changed revalidates the underlying memo (recomputing it if needed) and
// compares its changed-at revision; a failed revalidation conservatively
// counts as changed so the dependent recomputes and surfaces the failure.
type queryDep[K comparable, V any] struct {
	q   *Query[K, V]
	key K
}

func (d queryDep[K, V]) Changed(since Revision) bool {
	if _, err := d.q.Get(nil, d.key); err != nil {
		return true
	}
	d.q.mu.Lock()
	m := d.q.memos[d.key]
	d.q.mu.Unlock()
	return m == nil || m.changedAt > since
}
