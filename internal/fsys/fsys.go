// Package fsys defines the physical file-system contract consumed by the
// program database. Paths are slash-separated regardless of host OS; the OS
// driver converts at the boundary. A missing path is a typed absence
// (ErrNotFound), never a generic failure, so callers can distinguish "not
// there" from "broken".
package fsys

import (
	"errors"
	"time"
)

// ErrNotFound is returned by ReadFile and Stat when the path does not exist.
var ErrNotFound = errors.New("fsys: path not found")

// EntryKind classifies a path's metadata.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
)

func (k EntryKind) String() string {
	switch k {
	case EntryFile:
		return "file"
	case EntryDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Metadata describes an existing path.
type Metadata struct {
	Kind    EntryKind
	Size    int64
	ModTime time.Time
}

// FileSystem is the read-only physical file-system capability. Implementations
// must be safe for concurrent use: the same handle is shared across a Program
// and every snapshot taken from it.
type FileSystem interface {
	// ReadFile returns the content of the file at path. A missing path
	// is reported via ErrNotFound.
	ReadFile(path string) ([]byte, error)

	// Stat returns metadata for the path. A missing path is reported via
	// ErrNotFound.
	Stat(path string) (Metadata, error)
}
