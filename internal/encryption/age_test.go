package encryption

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age/armor"

	"drawer-go/internal/config"
)

const testPassphrase = "correct horse battery staple"

func newTestAgeEncryptor(t *testing.T, armored bool) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "drawer.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "drawer.key"),
		Armor:          armored,
	})
}

func setupAgeEncryptor(t *testing.T, armored bool) *AgeEncryptor {
	t.Helper()
	e := newTestAgeEncryptor(t, armored)
	if err := e.Setup(testPassphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	return e
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t, false)
	if e.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup")
	}

	if err := e.Setup(testPassphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup")
	}

	info, err := os.Stat(e.privateKeyPath)
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key mode = %v, want 0600", perm)
	}
	pub, _ := os.ReadFile(e.publicKeyPath)
	if !strings.HasPrefix(string(pub), "age1") {
		t.Errorf("public key = %q, want an age1 recipient", pub)
	}

	if err := e.Setup("another"); !errors.Is(err, ErrKeysExist) {
		t.Errorf("second Setup() error = %v, want ErrKeysExist", err)
	}
	if err := newTestAgeEncryptor(t, false).Setup(""); err == nil {
		t.Error("Setup(\"\") expected error")
	}
}

func TestAgeEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: []byte{}},
		{name: "binary", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "sqlite sized", input: bytes.Repeat([]byte("SQLite format 3\x00"), 8192)},
	}

	for _, armored := range []bool{false, true} {
		e := setupAgeEncryptor(t, armored)
		dc, err := e.Unlock(testPassphrase)
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}

		for _, tt := range inputs {
			name := tt.name
			if armored {
				name += " armored"
			}
			t.Run(name, func(t *testing.T) {
				var sealed bytes.Buffer
				if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
					t.Fatalf("Encrypt() error = %v", err)
				}
				if got := bytes.HasPrefix(sealed.Bytes(), []byte(armor.Header)); got != armored {
					t.Errorf("armored output = %v, want %v", got, armored)
				}
				if len(tt.input) > 0 && bytes.Contains(sealed.Bytes(), tt.input) {
					t.Error("ciphertext contains the plaintext")
				}

				var plain bytes.Buffer
				if err := dc.Decrypt(&sealed, &plain); err != nil {
					t.Fatalf("Decrypt() error = %v", err)
				}
				if !bytes.Equal(plain.Bytes(), tt.input) {
					t.Errorf("round trip returned %d bytes, want %d", plain.Len(), len(tt.input))
				}
			})
		}
	}
}

func TestAgeEncryptor_Failures(t *testing.T) {
	t.Parallel()

	t.Run("wrong passphrase", func(t *testing.T) {
		e := setupAgeEncryptor(t, false)
		if _, err := e.Unlock("wrong"); err == nil {
			t.Error("Unlock() with wrong passphrase should fail")
		}
	})

	t.Run("encrypt before setup", func(t *testing.T) {
		e := newTestAgeEncryptor(t, false)
		if err := e.Encrypt(strings.NewReader("data"), &bytes.Buffer{}); err == nil {
			t.Error("Encrypt() before Setup should fail")
		}
	})

	t.Run("unlock before setup", func(t *testing.T) {
		e := newTestAgeEncryptor(t, false)
		if _, err := e.Unlock(testPassphrase); err == nil {
			t.Error("Unlock() before Setup should fail")
		}
	})

	t.Run("backup sealed to another key", func(t *testing.T) {
		mine := setupAgeEncryptor(t, false)
		theirs := setupAgeEncryptor(t, false)

		var sealed bytes.Buffer
		if err := theirs.Encrypt(strings.NewReader("catalog"), &sealed); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		dc, err := mine.Unlock(testPassphrase)
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		if err := dc.Decrypt(&sealed, &bytes.Buffer{}); err == nil {
			t.Error("Decrypt() of a foreign backup should fail")
		}
	})
}
