package vault

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"drawer-go/internal/drawer"
)

// MemoryVault keeps file bytes in memory, keyed by slash-separated location.
// It is used in tests and for throwaway servers. Safe for concurrent use.
type MemoryVault struct {
	mu    sync.RWMutex
	blobs map[string][]byte // location -> bytes
	dirs  map[string]bool   // folder path -> ensured
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		blobs: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (m *MemoryVault) Location(folderPath, storageName string) string {
	return drawer.JoinPath(drawer.NormalizePath(folderPath), storageName)
}

func (m *MemoryVault) IncomingLocation(storageName string) string {
	return "/" + incomingDir + "/" + storageName
}

func (m *MemoryVault) EnsureDirectory(folderPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[drawer.NormalizePath(folderPath)] = true
	return nil
}

// HasDirectory reports whether EnsureDirectory was called for folderPath and
// the directory has not been moved or removed since.
func (m *MemoryVault) HasDirectory(folderPath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[drawer.NormalizePath(folderPath)]
}

func (m *MemoryVault) Write(location string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, drawer.WrapIO("Write", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[location] = data
	return int64(len(data)), nil
}

func (m *MemoryVault) Stat(location string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[location]
	if !ok {
		return 0, drawer.Errorf(drawer.KindNotFound, "Stat", "file bytes are missing")
	}
	return int64(len(data)), nil
}

func (m *MemoryVault) Open(location string, offset, length int64) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[location]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, "Open", "file bytes are missing")
	}

	size := int64(len(data))
	start := min(offset, size)
	end := size
	if length >= 0 && start+length < size {
		end = start + length
	}
	// Blobs are replaced, never mutated, so the slice can be shared.
	return io.NopCloser(bytes.NewReader(data[start:end])), nil
}

// Bytes returns the stored bytes at location.
func (m *MemoryVault) Bytes(location string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[location]
	return data, ok
}

// Locations returns every location holding bytes.
func (m *MemoryVault) Locations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.blobs))
	for loc := range m.blobs {
		out = append(out, loc)
	}
	return out
}

func (m *MemoryVault) Move(oldLocation, newLocation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[oldLocation]
	if !ok {
		return drawer.Errorf(drawer.KindNotFound, "Move", "file bytes are missing")
	}
	delete(m.blobs, oldLocation)
	m.blobs[newLocation] = data
	return nil
}

func (m *MemoryVault) MoveDirectory(oldFolderPath, newFolderPath string) error {
	oldPath := drawer.NormalizePath(oldFolderPath)
	newPath := drawer.NormalizePath(newFolderPath)
	if oldPath == drawer.RootPath || newPath == drawer.RootPath {
		return drawer.Errorf(drawer.KindBadRequest, "MoveDirectory", "cannot move the root directory")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for loc, data := range m.blobs {
		if strings.HasPrefix(loc, oldPath+"/") {
			delete(m.blobs, loc)
			m.blobs[drawer.RewritePrefix(loc, oldPath, newPath)] = data
		}
	}
	for dir := range m.dirs {
		if drawer.IsSameOrDescendant(dir, oldPath) {
			delete(m.dirs, dir)
			m.dirs[drawer.RewritePrefix(dir, oldPath, newPath)] = true
		}
	}
	return nil
}

func (m *MemoryVault) Remove(location string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, location)
	return nil
}

func (m *MemoryVault) RemoveDirectory(folderPath string) error {
	p := drawer.NormalizePath(folderPath)
	if p == drawer.RootPath {
		return drawer.Errorf(drawer.KindBadRequest, "RemoveDirectory", "cannot remove the root directory")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for loc := range m.blobs {
		if strings.HasPrefix(loc, p+"/") {
			delete(m.blobs, loc)
		}
	}
	for dir := range m.dirs {
		if drawer.IsSameOrDescendant(dir, p) {
			delete(m.dirs, dir)
		}
	}
	return nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements drawer.Vault interface
var _ drawer.Vault = (*MemoryVault)(nil)
