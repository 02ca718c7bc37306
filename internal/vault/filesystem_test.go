package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemVault_Layout(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault(root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, ".incoming")); err != nil {
		t.Errorf("incoming directory not created: %v", err)
	}

	tests := []struct {
		folder string
		want   string
	}{
		{"/", filepath.Join(root, "a.txt")},
		{"/docs", filepath.Join(root, "docs", "a.txt")},
		{"/docs/2024/", filepath.Join(root, "docs", "2024", "a.txt")},
	}
	for _, tt := range tests {
		if got := v.Location(tt.folder, "a.txt"); got != tt.want {
			t.Errorf("Location(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestFileSystemVault_WriteLeavesNoTempFiles(t *testing.T) {
	v, err := NewFileSystemVault(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := v.EnsureDirectory("/docs"); err != nil {
		t.Fatalf("EnsureDirectory() error = %v", err)
	}
	if _, err := v.Write(v.Location("/docs", "a"), strings.NewReader("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(v.Root(), "docs"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("docs contains %v, want [a]", names)
	}
}

func TestFileSystemVault_MoveDirectoryRefusesExisting(t *testing.T) {
	v, err := NewFileSystemVault(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	for _, f := range []string{"/a", "/b"} {
		if err := v.EnsureDirectory(f); err != nil {
			t.Fatalf("EnsureDirectory(%s) error = %v", f, err)
		}
	}
	if err := v.MoveDirectory("/a", "/b"); err == nil {
		t.Error("MoveDirectory() onto an existing directory expected error")
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	v, err := NewFileSystemVault(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := v.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	if err := os.RemoveAll(v.Root()); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if err := v.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error after the root was removed")
	}
}
