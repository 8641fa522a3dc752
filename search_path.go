package taproot

// SearchPathKind types a resolution root. The kind decides which candidate
// files a root may contribute: stub-only roots never yield .py modules.
type SearchPathKind int

const (
	// SearchPathExtra is an extra root consulted before first-party code,
	// the moral equivalent of entries prepended to sys.path.
	SearchPathExtra SearchPathKind = iota
	// SearchPathFirstParty is the workspace's own source tree.
	SearchPathFirstParty
	// SearchPathStubs is a stub-only root (typeshed or a vendored copy);
	// only .pyi candidates are considered under it.
	SearchPathStubs
	// SearchPathSitePackages holds installed third-party packages.
	SearchPathSitePackages
)

func (k SearchPathKind) String() string {
	switch k {
	case SearchPathExtra:
		return "extra"
	case SearchPathFirstParty:
		return "first-party"
	case SearchPathStubs:
		return "stubs"
	case SearchPathSitePackages:
		return "site-packages"
	default:
		return "unknown"
	}
}

// SearchPath is one ordered, typed resolution root. It is an immutable
// value; identity is structural over kind and root, which is what module
// equality compares.
type SearchPath struct {
	kind SearchPathKind
	root string
}

// NewSearchPath returns a search path of the given kind rooted at root.
// Roots are slash-separated absolute paths in the file-system domain.
func NewSearchPath(kind SearchPathKind, root string) SearchPath {
	return SearchPath{kind: kind, root: root}
}

// Kind returns the root's type.
func (p SearchPath) Kind() SearchPathKind {
	return p.kind
}

// Root returns the root directory.
func (p SearchPath) Root() string {
	return p.root
}

// stubOnly reports whether only stub files may resolve under this root.
func (p SearchPath) stubOnly() bool {
	return p.kind == SearchPathStubs
}
