package taproot

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/taproot/internal/fsys"
)

// countingFS counts physical stats so tests can observe whether a resolution
// actually re-derived or was served from cache.
type countingFS struct {
	inner fsys.FileSystem
	stats atomic.Int64
}

func (c *countingFS) ReadFile(path string) ([]byte, error) {
	return c.inner.ReadFile(path)
}

func (c *countingFS) Stat(path string) (fsys.Metadata, error) {
	c.stats.Add(1)
	return c.inner.Stat(path)
}

func resolve(t *testing.T, p *Program, name string) *Module {
	t.Helper()
	mod, err := p.ResolveModule(MustModuleName(name))
	require.NoError(t, err)
	return mod
}

func TestResolveModule_SingleFileModule(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/app.py", []byte("x = 1\n"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	mod := resolve(t, p, "app")
	require.NotNil(t, mod)
	assert.Equal(t, KindModule, mod.Kind())
	assert.Equal(t, "/src/app.py", mod.File().Path)
}

func TestResolveModule_Package(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/pkg/__init__.py", nil)
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	mod := resolve(t, p, "pkg")
	require.NotNil(t, mod)
	assert.Equal(t, KindPackage, mod.Kind())
	assert.Equal(t, "/src/pkg/__init__.py", mod.File().Path)
}

func TestResolveModule_AbsenceIsNotAnError(t *testing.T) {
	mem := fsys.NewMemory()
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	mod, err := p.ResolveModule(MustModuleName("ghost"))
	require.NoError(t, err)
	assert.Nil(t, mod)
}

func TestResolveModule_SearchPathPriority(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/p2/x.py", []byte("x"))
	p := New(NewWorkspace([]SearchPath{
		NewSearchPath(SearchPathFirstParty, "/p1"),
		NewSearchPath(SearchPathSitePackages, "/p2"),
	}), mem)

	mod := resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/p2/x.py", mod.File().Path)

	// Once present under the higher-priority root, that root wins.
	mem.WriteFile("/p1/x.py", []byte("x"))
	require.NoError(t, p.ApplyChanges([]FileWatcherChange{{Path: "/p1/x.py", Kind: FileChangeCreated}}))

	mod = resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/p1/x.py", mod.File().Path)
}

func TestResolveModule_StubPrecedesSourceOnSameRoot(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/x.py", []byte("x"))
	mem.WriteFile("/src/x.pyi", []byte("x"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	mod := resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/src/x.pyi", mod.File().Path)
}

func TestResolveModule_StubInitializerPrecedesSource(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/pkg/__init__.py", nil)
	mem.WriteFile("/src/pkg/__init__.pyi", nil)
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	mod := resolve(t, p, "pkg")
	require.NotNil(t, mod)
	assert.Equal(t, "/src/pkg/__init__.pyi", mod.File().Path)
}

func TestResolveModule_PackageOutranksModuleOnLowerRoot(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/p1/x/__init__.py", nil)
	mem.WriteFile("/p2/x.py", []byte("x"))
	p := New(NewWorkspace([]SearchPath{
		NewSearchPath(SearchPathFirstParty, "/p1"),
		NewSearchPath(SearchPathSitePackages, "/p2"),
	}), mem)

	mod := resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, KindPackage, mod.Kind())
	assert.Equal(t, "/p1/x/__init__.py", mod.File().Path)
}

func TestResolveModule_StubOnlyRootIgnoresSources(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/stubs/x.py", []byte("x"))
	mem.WriteFile("/src/x.py", []byte("x"))
	p := New(NewWorkspace([]SearchPath{
		NewSearchPath(SearchPathStubs, "/stubs"),
		NewSearchPath(SearchPathFirstParty, "/src"),
	}), mem)

	mod := resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/src/x.py", mod.File().Path, "a .py under a stub-only root must not resolve")

	mem.WriteFile("/stubs/x.pyi", []byte("x"))
	require.NoError(t, p.ApplyChanges([]FileWatcherChange{{Path: "/stubs/x.pyi", Kind: FileChangeCreated}}))

	mod = resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/stubs/x.pyi", mod.File().Path)
}

func TestResolveModule_DottedName(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/a/__init__.py", nil)
	mem.WriteFile("/src/a/b.py", []byte("x"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	mod := resolve(t, p, "a.b")
	require.NotNil(t, mod)
	assert.Equal(t, KindModule, mod.Kind())
	assert.Equal(t, "/src/a/b.py", mod.File().Path)
}

func TestResolveModule_DottedIsolation(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/a/__init__.py", nil)
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	assert.Nil(t, resolve(t, p, "a.b"), "missing child yields absence for the whole name")
	require.NotNil(t, resolve(t, p, "a"), "the parent itself still resolves")
}

func TestResolveModule_ChildOfFileModuleIsAbsent(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/a.py", []byte("x"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	assert.Nil(t, resolve(t, p, "a.b"), "a single-file module has no children")
}

func TestResolveModule_NamespacePackageDisabledByDefault(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/ns/mod.py", []byte("x"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	assert.Nil(t, resolve(t, p, "ns"))
	assert.Nil(t, resolve(t, p, "ns.mod"))
}

func TestResolveModule_NamespacePackage(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/ns/mod.py", []byte("x"))
	ws := NewWorkspace(
		[]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")},
		WithNamespacePackages(true),
	)
	p := New(ws, mem)

	mod := resolve(t, p, "ns")
	require.NotNil(t, mod)
	assert.Equal(t, KindPackage, mod.Kind())
	assert.Equal(t, PathDirectory, mod.File().Kind)
	assert.Equal(t, "/src/ns", mod.File().Path)

	child := resolve(t, p, "ns.mod")
	require.NotNil(t, child)
	assert.Equal(t, "/src/ns/mod.py", child.File().Path)
}

func TestResolveModule_NamespaceRankedBelowLaterRealMatch(t *testing.T) {
	mem := fsys.NewMemory()
	mem.MkdirAll("/p1/x")
	mem.WriteFile("/p2/x.py", []byte("x"))
	ws := NewWorkspace([]SearchPath{
		NewSearchPath(SearchPathFirstParty, "/p1"),
		NewSearchPath(SearchPathSitePackages, "/p2"),
	}, WithNamespacePackages(true))
	p := New(ws, mem)

	mod := resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/p2/x.py", mod.File().Path, "an explicit module on a later root outranks an earlier namespace directory")
}

func TestResolveModule_NamespaceFallbackWhenNoRealMatch(t *testing.T) {
	mem := fsys.NewMemory()
	mem.MkdirAll("/p1/x")
	mem.MkdirAll("/p2/x")
	ws := NewWorkspace([]SearchPath{
		NewSearchPath(SearchPathFirstParty, "/p1"),
		NewSearchPath(SearchPathSitePackages, "/p2"),
	}, WithNamespacePackages(true))
	p := New(ws, mem)

	mod := resolve(t, p, "x")
	require.NotNil(t, mod)
	assert.Equal(t, "/p1/x", mod.File().Path, "among namespace candidates the earliest root wins")
}

func TestResolveModule_Idempotent(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/x.py", []byte("x"))
	fs := &countingFS{inner: mem}
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), fs)

	first := resolve(t, p, "x")
	require.NotNil(t, first)
	statsAfterFirst := fs.stats.Load()

	second := resolve(t, p, "x")
	assert.True(t, first.Equal(second))
	assert.Same(t, first, second, "a memo hit returns the identical value")
	assert.Equal(t, statsAfterFirst, fs.stats.Load(), "no observable re-derivation")
}

func TestResolveModule_InvalidationIsTargeted(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/x.py", []byte("a"))
	mem.WriteFile("/src/y.py", []byte("a"))
	fs := &countingFS{inner: mem}
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), fs)

	x := resolve(t, p, "x")
	y := resolve(t, p, "y")
	require.NotNil(t, x)
	require.NotNil(t, y)

	// x.py becomes x.pyi: a structural change, so re-derivation is
	// observable through the changed handle.
	mem.Remove("/src/x.py")
	mem.WriteFile("/src/x.pyi", []byte("a"))
	require.NoError(t, p.ApplyChanges([]FileWatcherChange{
		{Path: "/src/x.py", Kind: FileChangeDeleted},
		{Path: "/src/x.pyi", Kind: FileChangeCreated},
	}))
	base := fs.stats.Load()

	// The unrelated module revalidates from tracked facts alone.
	y2 := resolve(t, p, "y")
	assert.True(t, y.Equal(y2))
	assert.Equal(t, base, fs.stats.Load(), "unrelated module must not touch the physical file system")

	// The touched module re-derives.
	x2 := resolve(t, p, "x")
	require.NotNil(t, x2)
	assert.Equal(t, "/src/x.pyi", x2.File().Path)
	assert.NotEqual(t, x.File().ID, x2.File().ID)
	assert.False(t, x.Equal(x2))
}

func TestResolveModule_ContentEditKeepsResolutionUnchanged(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/x.py", []byte("a"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	before := resolve(t, p, "x")
	require.NotNil(t, before)

	mem.WriteFile("/src/x.py", []byte("bb"))
	require.NoError(t, p.ApplyChanges([]FileWatcherChange{{Path: "/src/x.py", Kind: FileChangeModified}}))

	// Recomputed but unchanged: same handle, same value, so dependents of
	// the resolution are spared.
	after := resolve(t, p, "x")
	require.NotNil(t, after)
	assert.Equal(t, before.File().ID, after.File().ID)
	assert.Same(t, before, after)
}

func TestResolveModule_DeletedThenRecreatedGetsFreshIdentity(t *testing.T) {
	mem := fsys.NewMemory()
	mem.WriteFile("/src/x.py", []byte("a"))
	p := New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)

	before := resolve(t, p, "x")
	require.NotNil(t, before)

	mem.Remove("/src/x.py")
	require.NoError(t, p.ApplyChanges([]FileWatcherChange{{Path: "/src/x.py", Kind: FileChangeDeleted}}))
	assert.Nil(t, resolve(t, p, "x"))

	mem.WriteFile("/src/x.py", []byte("a"))
	require.NoError(t, p.ApplyChanges([]FileWatcherChange{{Path: "/src/x.py", Kind: FileChangeCreated}}))

	after := resolve(t, p, "x")
	require.NotNil(t, after)
	assert.NotEqual(t, before.File().ID, after.File().ID, "structural change re-issues the handle")
	assert.False(t, before.Equal(after))
}

func TestResolveModule_PureFunctionOfInputs(t *testing.T) {
	build := func() *Program {
		mem := fsys.NewMemory()
		mem.WriteFile("/src/pkg/__init__.pyi", nil)
		mem.WriteFile("/src/pkg/mod.py", []byte("x"))
		return New(NewWorkspace([]SearchPath{NewSearchPath(SearchPathFirstParty, "/src")}), mem)
	}
	a := resolve(t, build(), "pkg.mod")
	b := resolve(t, build(), "pkg.mod")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, a.Equal(b), "identical inputs must yield structurally equal modules")
}
