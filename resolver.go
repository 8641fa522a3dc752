package taproot

import (
	"path"

	"github.com/jward/taproot/internal/db"
	"github.com/jward/taproot/internal/vfs"
)

// resolveModule is the compute function behind the module-resolution query.
// It is a pure function of the workspace configuration and the virtual
// file system's existence/kind facts, never of file content, so
// identical inputs always yield structurally equal Modules and the engine's
// unchanged short-circuit applies to downstream consumers.
//
// Roots are consulted in configured priority order and the first real match
// wins. A namespace-package candidate (bare directory, rule 4) is remembered
// but ranked below a real match on any later root.
func (p *Program) resolveModule(ctx *db.Ctx, name ModuleName) (*Module, error) {
	ws := p.workspace.Get(ctx)

	var namespace *Module
	for _, sp := range ws.SearchPaths() {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		m, err := p.resolveInRoot(ctx, ws, sp, name)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		if m.Kind() == KindPackage && m.File().Kind == vfs.KindDirectory {
			// Namespace candidate: keep looking for a real match.
			if namespace == nil {
				namespace = m
			}
			continue
		}
		return m, nil
	}

	if namespace == nil {
		p.log.Debug().Stringer("module", name).Msg("module not resolved on any search path")
	}
	return namespace, nil
}

// resolveInRoot resolves name under a single search path. Parent components
// must be packages: a directory holding an initializer, or a bare directory
// when the workspace tolerates them. The final component is tried
// as, in order: package directory with initializer, stub file, source file,
// namespace directory. Failure at any component fails the whole name; no
// partial modules are produced.
func (p *Program) resolveInRoot(ctx *db.Ctx, ws *Workspace, sp SearchPath, name ModuleName) (*Module, error) {
	components := name.Components()
	dir := sp.Root()
	for _, component := range components[:len(components)-1] {
		if err := ctx.Cancelled(); err != nil {
			return nil, err
		}
		dir = path.Join(dir, component)
		if _, ok := p.initializer(ctx, sp, dir); ok {
			continue
		}
		if ws.NamespacePackages() && p.pathKind(ctx, dir) == vfs.KindDirectory {
			continue
		}
		return nil, nil
	}

	target := path.Join(dir, components[len(components)-1])

	// 1. Directory with a package initializer, stub preferred.
	if init, ok := p.initializer(ctx, sp, target); ok {
		return newModule(name, KindPackage, sp, init), nil
	}
	// 2. Stub module file.
	if f := p.vfs.Resolve(ctx, p.fs, target+".pyi"); f.Kind == vfs.KindFile {
		return newModule(name, KindModule, sp, f), nil
	}
	// 3. Source module file; stub-only roots never contribute sources.
	if !sp.stubOnly() {
		if f := p.vfs.Resolve(ctx, p.fs, target+".py"); f.Kind == vfs.KindFile {
			return newModule(name, KindModule, sp, f), nil
		}
	}
	// 4. Bare directory as a namespace package.
	if ws.NamespacePackages() {
		if f := p.vfs.Resolve(ctx, p.fs, target); f.Kind == vfs.KindDirectory {
			return newModule(name, KindPackage, sp, f), nil
		}
	}
	return nil, nil
}

// initializer returns the package initializer file under dir, preferring the
// stub-style __init__.pyi over __init__.py. Stub-only roots accept only the
// stub form.
func (p *Program) initializer(ctx *db.Ctx, sp SearchPath, dir string) (vfs.File, bool) {
	if f := p.vfs.Resolve(ctx, p.fs, path.Join(dir, "__init__.pyi")); f.Kind == vfs.KindFile {
		return f, true
	}
	if !sp.stubOnly() {
		if f := p.vfs.Resolve(ctx, p.fs, path.Join(dir, "__init__.py")); f.Kind == vfs.KindFile {
			return f, true
		}
	}
	return vfs.File{}, false
}

// pathKind returns the tracked existence fact for a path, registering the
// read as a dependency of the active computation.
func (p *Program) pathKind(ctx *db.Ctx, pth string) vfs.PathKind {
	return p.vfs.Resolve(ctx, p.fs, pth).Kind
}

// moduleEqual is the unchanged-detection hook for the resolution query.
func moduleEqual(a, b *Module) bool {
	return a.Equal(b)
}
