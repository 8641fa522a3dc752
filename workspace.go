package taproot

// Workspace is the project configuration the resolver keys off: the ordered
// search paths and resolution settings. A Workspace is immutable; the
// Program replaces it wholesale via SetWorkspace, which the engine treats as
// an input change. The same value is cheaply shared across snapshots.
type Workspace struct {
	searchPaths       []SearchPath
	namespacePackages bool
}

// WorkspaceOption configures a Workspace at construction.
type WorkspaceOption func(*Workspace)

// WithNamespacePackages permits bare directories without an initializer to
// resolve as packages, ranked below any explicit module or package found on
// any root.
func WithNamespacePackages(enabled bool) WorkspaceOption {
	return func(w *Workspace) {
		w.namespacePackages = enabled
	}
}

// NewWorkspace returns a workspace consulting searchPaths in the given
// order. Ordering is semantically significant: earlier roots win.
func NewWorkspace(searchPaths []SearchPath, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{searchPaths: append([]SearchPath(nil), searchPaths...)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SearchPaths returns the ordered resolution roots.
func (w *Workspace) SearchPaths() []SearchPath {
	return w.searchPaths
}

// NamespacePackages reports whether namespace packages are tolerated.
func (w *Workspace) NamespacePackages() bool {
	return w.namespacePackages
}
