package taproot

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jward/taproot/internal/db"
	"github.com/jward/taproot/internal/fsys"
	"github.com/jward/taproot/internal/vfs"
)

// ErrCancelled reports that a query was interrupted by a concurrent change
// applied to the same Program. It is transient: the caller retries once the
// new input state has settled; the Program never retries on its own.
var ErrCancelled = db.ErrCancelled

// ErrSnapshot reports a write attempted through a snapshot. Snapshots are
// read-only views; changes go to the canonical Program.
var ErrSnapshot = db.ErrSnapshot

// SourceDB is the capability surface shared by every query group: access to
// the physical file system, the virtual file system, and the evaluation
// runtime. Sibling subsystems register their query tables against the
// runtime and inherit the Program's snapshot and cancellation guarantees.
type SourceDB interface {
	FileSystem() fsys.FileSystem
	Files() *vfs.FileSystem
	Runtime() *db.Runtime
	ReadFile(path string) ([]byte, error)
}

// ResolverDB is the capability surface of the module-resolution query group.
type ResolverDB interface {
	SourceDB
	ResolveModule(name ModuleName) (*Module, error)
}

// Program is the composition root of the analysis database. It owns the
// workspace configuration, the virtual file system, the shared physical
// file-system handle, and the engine runtime, and unifies the query
// capabilities contributed by sibling subsystems into one database.
//
// The canonical Program has a single logical writer (ApplyChanges,
// SetWorkspace). Concurrent readers take snapshots: each snapshot is an
// independent Program observing a frozen, mutually consistent view of
// storage, virtual files, file system, and workspace as of the snapshot
// instant. Later writes to the origin are never visible through it.
type Program struct {
	runtime   *db.Runtime
	vfs       *vfs.FileSystem
	fs        fsys.FileSystem
	workspace *db.Input[*Workspace]
	modules   *db.Query[ModuleName, *Module]
	log       zerolog.Logger
}

// Option configures a Program.
type Option func(*Program)

// WithLogger routes the Program's structured log events to l.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Program) {
		p.log = l
	}
}

// New creates a fresh database over ws and fs: empty storage, empty virtual
// file system. fs is retained with shared ownership and must tolerate
// concurrent reads from multiple snapshots.
func New(ws *Workspace, fs fsys.FileSystem, opts ...Option) *Program {
	p := &Program{
		runtime: db.NewRuntime(),
		fs:      fs,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.vfs = vfs.New(p.runtime)
	p.workspace = db.NewInput(p.runtime, ws)
	p.modules = db.NewQuery(p.runtime, "resolveModule", p.resolveModule, moduleEqual)
	return p
}

// ApplyChanges is the sole external write path: each record invalidates the
// virtual-file entry for its path. Applying changes signals cancellation to
// evaluations still in flight on this Program and waits for them to unwind;
// snapshots taken beforehand are unaffected. Returns ErrSnapshot when called
// on a snapshot.
func (p *Program) ApplyChanges(changes []FileWatcherChange) error {
	err := p.runtime.Mutate(func() {
		for _, change := range changes {
			p.vfs.Touch(p.fs, change.Path)
			p.log.Debug().
				Str("path", change.Path).
				Stringer("kind", change.Kind).
				Msg("applied file change")
		}
	})
	if err != nil {
		return fmt.Errorf("apply changes: %w", err)
	}
	return nil
}

// Workspace returns the current workspace configuration.
func (p *Program) Workspace() *Workspace {
	return p.workspace.Get(nil)
}

// SetWorkspace replaces the workspace wholesale. The replacement is an
// engine input change: it cancels in-flight evaluations and invalidates
// every query that read the workspace. Returns ErrSnapshot on a snapshot.
func (p *Program) SetWorkspace(ws *Workspace) error {
	err := p.runtime.Mutate(func() {
		p.workspace.Set(ws)
	})
	if err != nil {
		return fmt.Errorf("set workspace: %w", err)
	}
	p.log.Debug().Msg("workspace replaced")
	return nil
}

// Snapshot produces an independent Program over an isolated read-consistent
// branch of the database: frozen storage, copy-on-write virtual files,
// shared physical handle, shared workspace value. Snapshots are safe to hand
// to other goroutines; anything derived on a snapshot stays invisible to the
// origin and to sibling snapshots.
func (p *Program) Snapshot() *Program {
	p.runtime.BeginRead()
	defer p.runtime.EndRead()

	rt := p.runtime.Snapshot()
	s := &Program{
		runtime: rt,
		fs:      p.fs,
		log:     p.log,
	}
	s.vfs = p.vfs.Snapshot(rt)
	s.workspace = p.workspace.Branch(rt)
	s.modules = p.modules.Branch(rt, s.resolveModule)
	return s
}

// ResolveModule resolves a dotted module name against the workspace's search
// paths. Absence is (nil, nil): an unresolved import is an ordinary result,
// not a failure. ErrCancelled reports interruption by a concurrent change;
// any other error is a defect and propagates unmodified.
func (p *Program) ResolveModule(name ModuleName) (*Module, error) {
	p.runtime.BeginRead()
	defer p.runtime.EndRead()
	return p.modules.Get(nil, name)
}

// ReadFile reads file content through the shared physical handle for
// downstream source and semantic stages. A missing file is reported as
// fsys.ErrNotFound. The resolver itself never reads content.
func (p *Program) ReadFile(path string) ([]byte, error) {
	p.runtime.BeginRead()
	defer p.runtime.EndRead()
	if err := p.runtime.CheckCancelled(); err != nil {
		return nil, err
	}
	return p.fs.ReadFile(path)
}

// FileSystem implements SourceDB.
func (p *Program) FileSystem() fsys.FileSystem {
	return p.fs
}

// Files implements SourceDB: the Program's virtual file system.
func (p *Program) Files() *vfs.FileSystem {
	return p.vfs
}

// Runtime implements SourceDB: the shared evaluation runtime sibling query
// groups register against.
func (p *Program) Runtime() *db.Runtime {
	return p.runtime
}

// IsCancelled reports whether err is the evaluation-cancelled signal.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

var (
	_ SourceDB   = (*Program)(nil)
	_ ResolverDB = (*Program)(nil)
)
