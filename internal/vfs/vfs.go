// Package vfs is the virtual file system: an indirection layer mapping paths
// to stable identities so derived state can key off "a path as currently
// known" instead of volatile disk contents. Entries record existence and
// kind-of-path facts only; content never passes through here.
//
// Identity rules: a FileID persists across content edits of its path; a
// structural change (file appears, disappears, or flips between file and
// directory) re-issues the ID. Touch is the sole invalidation entry point.
package vfs

import (
	"sync"
	"sync/atomic"

	"github.com/jward/taproot/internal/db"
	"github.com/jward/taproot/internal/fsys"
)

// FileID is the stable identity of a tracked path.
type FileID uint32

// PathKind is the tracked existence fact for a path.
type PathKind uint8

const (
	KindMissing PathKind = iota
	KindFile
	KindDirectory
)

func (k PathKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "missing"
	}
}

// File is the immutable fact record handed to queries: identity plus the
// kind observed when the entry was last refreshed. Two File values are equal
// exactly when they describe the same identity in the same state, which is
// what lets the engine detect value-unchanged recomputation downstream.
type File struct {
	ID   FileID
	Path string
	Kind PathKind
}

// entry pairs a fact record with the revision at which it last changed.
// Entries are replaced wholesale, never mutated: snapshot branches share
// them by pointer.
type entry struct {
	file     File
	revision db.Revision
}

// FileSystem tracks one Program's path facts. The canonical instance is
// mutable through Touch; snapshots are copy-on-write branches where only
// subsequently touched paths diverge.
type FileSystem struct {
	rt     *db.Runtime
	nextID *atomic.Uint32 // shared across snapshots so handles never collide

	mu      sync.RWMutex
	entries map[string]*entry
}

// New returns an empty virtual file system bound to rt.
func New(rt *db.Runtime) *FileSystem {
	return &FileSystem{
		rt:      rt,
		nextID:  new(atomic.Uint32),
		entries: make(map[string]*entry),
	}
}

// Resolve is the idempotent get-or-create lookup. The first sighting of a
// path stats fs to seed the entry; later calls return the tracked fact
// without touching the physical file system. When ctx is non-nil the read is
// recorded as a dependency of the active computation.
func (v *FileSystem) Resolve(ctx *db.Ctx, fs fsys.FileSystem, path string) File {
	v.mu.RLock()
	e := v.entries[path]
	v.mu.RUnlock()

	if e == nil {
		v.mu.Lock()
		if e = v.entries[path]; e == nil {
			e = &entry{
				file:     File{ID: v.allocID(), Path: path, Kind: statKind(fs, path)},
				revision: v.rt.Revision(),
			}
			v.entries[path] = e
		}
		v.mu.Unlock()
	}

	ctx.AddDependency(pathDep{v: v, path: path})
	return e.file
}

// Touch re-stats path and bumps its entry to the current revision. A
// structural change re-issues the FileID; a content-only edit keeps it, so
// resolutions that recompute to the same handle count as unchanged. Touch
// must run inside Runtime.Mutate.
func (v *FileSystem) Touch(fs fsys.FileSystem, path string) {
	kind := statKind(fs, path)
	rev := v.rt.Revision()

	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.entries[path]
	id := v.allocID()
	if old != nil && old.file.Kind == kind {
		id = old.file.ID
	}
	v.entries[path] = &entry{file: File{ID: id, Path: path, Kind: kind}, revision: rev}
}

// Snapshot returns a copy-on-write branch bound to a snapshot runtime.
// Entry records are shared; paths first seen or touched after the branch
// diverge on their own side only.
func (v *FileSystem) Snapshot(rt *db.Runtime) *FileSystem {
	v.mu.RLock()
	entries := make(map[string]*entry, len(v.entries))
	for p, e := range v.entries {
		entries[p] = e
	}
	v.mu.RUnlock()
	return &FileSystem{rt: rt, nextID: v.nextID, entries: entries}
}

func (v *FileSystem) allocID() FileID {
	return FileID(v.nextID.Add(1))
}

// revisionOf returns the change revision of path's entry, or zero when the
// path was never tracked.
func (v *FileSystem) revisionOf(path string) db.Revision {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if e := v.entries[path]; e != nil {
		return e.revision
	}
	return 0
}

func statKind(fs fsys.FileSystem, path string) PathKind {
	md, err := fs.Stat(path)
	if err != nil {
		return KindMissing
	}
	if md.Kind == fsys.EntryDirectory {
		return KindDirectory
	}
	return KindFile
}

// pathDep is the dependency recorded for each fact read: it compares the
// entry's change revision against the revision a memo was verified at.
type pathDep struct {
	v    *FileSystem
	path string
}

func (d pathDep) Changed(since db.Revision) bool {
	return d.v.revisionOf(d.path) > since
}
