package db

import "sync"

// Input is a revisioned input cell: a value the outside world replaces
// wholesale, tracked so queries that read it are invalidated by the
// replacement. The Program stores its workspace configuration in one.
type Input[V any] struct {
	rt *Runtime

	mu        sync.RWMutex
	value     V
	changedAt Revision
}

// NewInput registers an input cell holding v against rt.
func NewInput[V any](rt *Runtime, v V) *Input[V] {
	return &Input[V]{rt: rt, value: v, changedAt: rt.Revision()}
}

// Get returns the current value, recording the read on ctx.
func (i *Input[V]) Get(ctx *Ctx) V {
	i.mu.RLock()
	defer i.mu.RUnlock()
	ctx.AddDependency(i)
	return i.value
}

// Set replaces the value. It must run inside Runtime.Mutate so the
// replacement lands on a fresh revision and in-flight readers have unwound.
func (i *Input[V]) Set(v V) {
	i.mu.Lock()
	i.value = v
	i.changedAt = i.rt.Revision()
	i.mu.Unlock()
}

// Changed implements Dependency.
func (i *Input[V]) Changed(since Revision) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.changedAt > since
}

// Branch returns a copy of the cell bound to a snapshot runtime. The held
// value is shared, not copied: inputs are immutable by contract and replaced
// wholesale.
func (i *Input[V]) Branch(rt *Runtime) *Input[V] {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return &Input[V]{rt: rt, value: i.value, changedAt: i.changedAt}
}
