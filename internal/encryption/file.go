package encryption

import (
	"fmt"
	"os"
	"path/filepath"

	"drawer-go/internal/drawer"
)

// EncryptFile seals the file at srcPath into dstPath. dstPath is written
// through a temp file so a failed run never leaves a truncated backup.
func EncryptFile(e drawer.Encryptor, srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer src.Close()

	return writeVia(dstPath, func(dst *os.File) error {
		return e.Encrypt(src, dst)
	})
}

// DecryptFile opens the sealed file at srcPath into dstPath.
func DecryptFile(dc drawer.DecryptionContext, srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer src.Close()

	return writeVia(dstPath, func(dst *os.File) error {
		return dc.Decrypt(src, dst)
	})
}

func writeVia(dstPath string, fill func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0700); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
