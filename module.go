package taproot

import (
	"fmt"

	"github.com/jward/taproot/internal/vfs"
)

// ModuleKind distinguishes single-file modules from packages. It governs how
// child lookups proceed: only packages have children.
type ModuleKind int

const (
	// KindModule is a single-file module such as foo.py or foo.pyi.
	KindModule ModuleKind = iota
	// KindPackage is a directory-backed package: foo/__init__.py,
	// foo/__init__.pyi, or a bare namespace directory.
	KindPackage
)

func (k ModuleKind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

// Module is the immutable result of a successful resolution: the absolute
// dotted name, its kind, the search path it was found under, and the virtual
// file backing it (the initializer for packages, the directory itself for
// namespace packages). Modules are created only by the resolver, shared by
// pointer, and never mutated; stale ones fall out of the cache when their
// inputs change.
type Module struct {
	name       ModuleName
	kind       ModuleKind
	searchPath SearchPath
	file       vfs.File
}

func newModule(name ModuleName, kind ModuleKind, searchPath SearchPath, file vfs.File) *Module {
	return &Module{name: name, kind: kind, searchPath: searchPath, file: file}
}

// Name returns the absolute dotted name of the module.
func (m *Module) Name() ModuleName {
	return m.name
}

// Kind reports whether the module is a single file or a package.
func (m *Module) Kind() ModuleKind {
	return m.kind
}

// File returns the virtual file the module resolves to.
func (m *Module) File() vfs.File {
	return m.file
}

// path returns the search path the module was resolved under. Resolution
// uses it to scope child lookups; it is not part of the downstream API.
func (m *Module) path() SearchPath {
	return m.searchPath
}

// Equal reports structural equality over name, kind, search path, and
// backing file. The engine relies on it to detect recomputed-but-unchanged
// resolutions and spare dependents from cascading invalidation.
func (m *Module) Equal(o *Module) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.name == o.name && m.kind == o.kind && m.searchPath == o.searchPath && m.file == o.file
}

func (m *Module) String() string {
	return fmt.Sprintf("%s (%s, %s)", m.name, m.kind, m.file.Path)
}
