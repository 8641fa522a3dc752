package taproot

// FileChangeKind classifies one external edit event.
type FileChangeKind int

const (
	FileChangeCreated FileChangeKind = iota
	FileChangeModified
	FileChangeDeleted
)

func (k FileChangeKind) String() string {
	switch k {
	case FileChangeCreated:
		return "created"
	case FileChangeModified:
		return "modified"
	case FileChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileWatcherChange is one record of an externally produced change feed.
// Order within a batch is insignificant: each entry invalidates only its own
// path. Producing the feed (a watcher, an editor, a test) is out of scope.
type FileWatcherChange struct {
	Path string
	Kind FileChangeKind
}
