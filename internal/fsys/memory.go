package fsys

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory FileSystem with mutators. It backs tests and
// tooling that simulate workspaces without touching disk. All methods are
// safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memFile
	dirs  map[string]bool
}

type memFile struct {
	data    []byte
	modTime time.Time
}

// NewMemory returns an empty in-memory file system rooted at "/".
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string]memFile),
		dirs:  map[string]bool{"/": true},
	}
}

func normalize(p string) string {
	p = path.Clean("/" + strings.TrimPrefix(p, "/"))
	return p
}

func (m *Memory) ReadFile(p string) ([]byte, error) {
	p = normalize(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[p]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", p, ErrNotFound)
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

func (m *Memory) Stat(p string) (Metadata, error) {
	p = normalize(p)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.files[p]; ok {
		return Metadata{Kind: EntryFile, Size: int64(len(f.data)), ModTime: f.modTime}, nil
	}
	if m.dirs[p] {
		return Metadata{Kind: EntryDirectory}, nil
	}
	return Metadata{}, fmt.Errorf("stat %s: %w", p, ErrNotFound)
}

// WriteFile creates or replaces the file at p, creating parent directories
// as needed.
func (m *Memory) WriteFile(p string, data []byte) {
	p = normalize(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAllLocked(path.Dir(p))
	m.files[p] = memFile{data: append([]byte(nil), data...), modTime: time.Now()}
}

// MkdirAll creates the directory at p and any missing parents.
func (m *Memory) MkdirAll(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAllLocked(normalize(p))
}

func (m *Memory) mkdirAllLocked(p string) {
	for ; p != "/" && !m.dirs[p]; p = path.Dir(p) {
		m.dirs[p] = true
	}
}

// Remove deletes the file or empty directory at p. Removing a missing path
// is a no-op.
func (m *Memory) Remove(p string) {
	p = normalize(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, p)
	delete(m.dirs, p)
}

// RemoveAll deletes p and everything beneath it.
func (m *Memory) RemoveAll(p string) {
	p = normalize(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := p + "/"
	for f := range m.files {
		if f == p || strings.HasPrefix(f, prefix) {
			delete(m.files, f)
		}
	}
	for d := range m.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(m.dirs, d)
		}
	}
}
