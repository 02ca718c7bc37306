package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptFile_DecryptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := filepath.Join(dir, "catalog.db")
	sealed := filepath.Join(dir, "backups", "catalog.db.age")
	restored := filepath.Join(dir, "restored", "catalog.db")

	input := []byte{0x00, 0x01, 'S', 'Q', 'L', 0xff, 0xfe}
	if err := os.WriteFile(plain, input, 0600); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	e := newTestAgeEncryptor(t, false)
	if err := e.Setup("pw"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if err := EncryptFile(e, plain, sealed); err != nil {
		t.Fatalf("EncryptFile() error = %v", err)
	}
	ciphertext, err := os.ReadFile(sealed)
	if err != nil {
		t.Fatalf("reading sealed file: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("SQL")) {
		t.Error("sealed file contains plaintext")
	}

	dc, err := e.Unlock("pw")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := DecryptFile(dc, sealed, restored); err != nil {
		t.Fatalf("DecryptFile() error = %v", err)
	}
	got, err := os.ReadFile(restored)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("restored = %x, want %x", got, input)
	}
}

func TestDecryptFile_BadInputLeavesNoOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "garbage")
	dst := filepath.Join(dir, "out.db")
	if err := os.WriteFile(src, []byte("not encrypted"), 0600); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	dc, _ := NewTestEncryptor().Unlock("")
	if err := DecryptFile(dc, src, dst); err == nil {
		t.Fatal("DecryptFile() expected error for unencrypted input")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("output exists after failed decrypt: %v", err)
	}
}
