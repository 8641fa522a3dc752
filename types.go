package taproot

import (
	"github.com/jward/taproot/internal/db"
	"github.com/jward/taproot/internal/fsys"
	"github.com/jward/taproot/internal/vfs"
)

// Public type aliases for internal types surfaced through the Program API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type File = vfs.File
type FileID = vfs.FileID
type PathKind = vfs.PathKind
type Revision = db.Revision
type FileSystem = fsys.FileSystem
type Metadata = fsys.Metadata
type MemoryFileSystem = fsys.Memory

// Path existence facts as tracked by the virtual file system.
const (
	PathMissing   = vfs.KindMissing
	PathFile      = vfs.KindFile
	PathDirectory = vfs.KindDirectory
)

// ErrNotFound is the typed absence returned by physical file-system reads.
var ErrNotFound = fsys.ErrNotFound

// OSFileSystem returns the host-backed physical file system.
func OSFileSystem() FileSystem {
	return fsys.OS()
}

// NewMemoryFileSystem returns an empty in-memory physical file system,
// useful for tests and tooling that simulate a workspace.
func NewMemoryFileSystem() *MemoryFileSystem {
	return fsys.NewMemory()
}
