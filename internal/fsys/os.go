package fsys

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// osFS serves reads from the host file system. Slash-separated paths are
// converted to the host representation at the call boundary.
type osFS struct{}

// OS returns a FileSystem backed by the host file system.
func OS() FileSystem {
	return osFS{}
}

func (osFS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (osFS) Stat(path string) (Metadata, error) {
	info, err := os.Stat(filepath.FromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, fmt.Errorf("stat %s: %w", path, ErrNotFound)
		}
		return Metadata{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return metadataFromInfo(info), nil
}

func metadataFromInfo(info fs.FileInfo) Metadata {
	kind := EntryFile
	if info.IsDir() {
		kind = EntryDirectory
	}
	return Metadata{Kind: kind, Size: info.Size(), ModTime: info.ModTime()}
}
