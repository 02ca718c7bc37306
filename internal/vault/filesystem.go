package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"drawer-go/internal/drawer"
)

// incomingDir holds uploads that have been received but not yet placed.
const incomingDir = ".incoming"

// FileSystemVault stores bytes in a directory tree that mirrors the folder
// hierarchy:
//
//	<root>/
//	  .incoming/            (uploads in flight)
//	  <storageName>         (files in the root folder)
//	  docs/2024/<storageName>
type FileSystemVault struct {
	root        string
	incomingDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(root string) (*FileSystemVault, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	incoming := filepath.Join(root, incomingDir)

	if err := os.MkdirAll(incoming, 0755); err != nil {
		return nil, fmt.Errorf("failed to create incoming directory: %w", err)
	}

	return &FileSystemVault{root: root, incomingDir: incoming}, nil
}

// Root returns the absolute vault root.
func (v *FileSystemVault) Root() string {
	return v.root
}

func (v *FileSystemVault) dirFor(folderPath string) string {
	rel := strings.TrimPrefix(drawer.NormalizePath(folderPath), "/")
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

func (v *FileSystemVault) Location(folderPath, storageName string) string {
	return filepath.Join(v.dirFor(folderPath), storageName)
}

func (v *FileSystemVault) IncomingLocation(storageName string) string {
	return filepath.Join(v.incomingDir, storageName)
}

func (v *FileSystemVault) EnsureDirectory(folderPath string) error {
	if err := os.MkdirAll(v.dirFor(folderPath), 0755); err != nil {
		return drawer.WrapIO("EnsureDirectory", err)
	}
	return nil
}

// Write stores r at location using atomic write (temp file + rename).
func (v *FileSystemVault) Write(location string, r io.Reader) (int64, error) {
	const op = "Write"

	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(location)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, drawer.WrapIO(op, err)
	}
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, drawer.WrapIO(op, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return 0, drawer.WrapIO(op, fmt.Errorf("failed to write data: %w", err))
	}
	if err := tmpFile.Close(); err != nil {
		return 0, drawer.WrapIO(op, fmt.Errorf("failed to close temp file: %w", err))
	}

	if err := os.Rename(tmpPath, location); err != nil {
		return 0, drawer.WrapIO(op, fmt.Errorf("failed to rename temp file: %w", err))
	}

	success = true
	return written, nil
}

func (v *FileSystemVault) Stat(location string) (int64, error) {
	info, err := os.Stat(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, drawer.Errorf(drawer.KindNotFound, "Stat", "file bytes are missing")
		}
		return 0, drawer.WrapIO("Stat", err)
	}
	if info.IsDir() {
		return 0, drawer.Errorf(drawer.KindNotFound, "Stat", "file bytes are missing")
	}
	return info.Size(), nil
}

// limitedFile closes the underlying file once the limited read is done.
type limitedFile struct {
	io.Reader
	f *os.File
}

func (l *limitedFile) Close() error { return l.f.Close() }

func (v *FileSystemVault) Open(location string, offset, length int64) (io.ReadCloser, error) {
	const op = "Open"

	f, err := os.Open(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, drawer.Errorf(drawer.KindNotFound, op, "file bytes are missing")
		}
		return nil, drawer.WrapIO(op, err)
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, drawer.WrapIO(op, err)
		}
	}
	if length < 0 {
		return f, nil
	}
	return &limitedFile{Reader: io.LimitReader(f, length), f: f}, nil
}

func (v *FileSystemVault) Move(oldLocation, newLocation string) error {
	const op = "Move"

	if err := os.MkdirAll(filepath.Dir(newLocation), 0755); err != nil {
		return drawer.WrapIO(op, err)
	}
	if err := os.Rename(oldLocation, newLocation); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return drawer.Errorf(drawer.KindNotFound, op, "file bytes are missing")
		}
		return drawer.WrapIO(op, err)
	}
	return nil
}

func (v *FileSystemVault) MoveDirectory(oldFolderPath, newFolderPath string) error {
	const op = "MoveDirectory"

	src := v.dirFor(oldFolderPath)
	dst := v.dirFor(newFolderPath)
	if src == v.root || dst == v.root {
		return drawer.Errorf(drawer.KindBadRequest, op, "cannot move the root directory")
	}

	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if _, err := os.Stat(dst); err == nil {
		return drawer.WrapIO(op, fmt.Errorf("destination %s already exists", dst))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return drawer.WrapIO(op, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return drawer.WrapIO(op, err)
	}
	return nil
}

func (v *FileSystemVault) Remove(location string) error {
	if err := os.Remove(location); err != nil && !errors.Is(err, os.ErrNotExist) {
		return drawer.WrapIO("Remove", err)
	}
	return nil
}

func (v *FileSystemVault) RemoveDirectory(folderPath string) error {
	dir := v.dirFor(folderPath)
	if dir == v.root {
		return drawer.Errorf(drawer.KindBadRequest, "RemoveDirectory", "cannot remove the root directory")
	}
	if err := os.RemoveAll(dir); err != nil {
		return drawer.WrapIO("RemoveDirectory", err)
	}
	return nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.incomingDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}

	probe, err := os.CreateTemp(v.incomingDir, ".probe-*")
	if err != nil {
		return fmt.Errorf("vault is not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// Compile-time check that FileSystemVault implements drawer.Vault interface
var _ drawer.Vault = (*FileSystemVault)(nil)
