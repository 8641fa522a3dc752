// Package taproot is the incremental analysis backbone of a static Python
// type checker: a persistent, query-based program database that aggregates
// analysis queries contributed by independent stages and resolves dotted
// import names to source files honoring interpreter-compatible search-path
// and package semantics.
//
// # Architecture
//
// Bottom-up, the database is built from four layers:
//
//  1. A physical file system (internal/fsys contract) supplying bytes and
//     metadata; shared, read-only, safe for concurrent readers.
//  2. A virtual file system (internal/vfs) mapping paths to stable file
//     identities, decoupling cache keys from volatile disk contents.
//  3. A generic dependency-tracked memoizing engine (internal/db) that
//     recomputes only the affected subgraph after an input changes.
//  4. The [Program]: the composition root owning workspace configuration,
//     virtual files, the file-system handle, and the engine runtime.
//
// # Usage
//
// Create a Program over a workspace and a file system, resolve modules, and
// feed it edits:
//
//	ws := taproot.NewWorkspace([]taproot.SearchPath{
//		taproot.NewSearchPath(taproot.SearchPathFirstParty, "/project/src"),
//		taproot.NewSearchPath(taproot.SearchPathSitePackages, "/project/.venv/lib/site-packages"),
//	})
//	p := taproot.New(ws, taproot.OSFileSystem())
//
//	name, _ := taproot.NewModuleName("collections.abc")
//	mod, err := p.ResolveModule(name)
//
//	_ = p.ApplyChanges([]taproot.FileWatcherChange{
//		{Path: "/project/src/app.py", Kind: taproot.FileChangeModified},
//	})
//
// # Concurrency
//
// The canonical Program has a single logical writer. Concurrent readers take
// [Program.Snapshot]: an isolated, frozen view safe to hand to another
// goroutine. Applying changes to the origin cancels evaluations still in
// flight on the origin, which surface [ErrCancelled] for the caller to
// retry; snapshots taken earlier are unaffected.
//
// # Error taxonomy
//
// Absence (module or path not found) is an explicit empty result, not an
// error. [ErrCancelled] is transient and caller-retriable. Anything else
// escaping a query is a defect and propagates unmodified; the cancellation
// guard never swallows unrelated failures.
package taproot
