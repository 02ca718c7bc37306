package encryption

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"drawer-go/internal/drawer"
)

// testHeader marks output of TestEncryptor.
var testHeader = []byte("DRWENC\x00\x00")

// testMask is XORed over every byte so sealed output never contains the plaintext.
const testMask = 0x5A

// TestEncryptor is a deterministic, keyless stand-in for AgeEncryptor. It
// writes testHeader followed by the masked input. Any non-empty passphrase
// unlocks it.
type TestEncryptor struct{}

var _ drawer.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	return mask(w, r)
}

func (e *TestEncryptor) Unlock(passphrase string) (drawer.DecryptionContext, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase must not be empty")
	}
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

func mask(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading data: %w", err)
		}
		if err := bw.WriteByte(b ^ testMask); err != nil {
			return fmt.Errorf("writing data: %w", err)
		}
	}
	return bw.Flush()
}

// TestDecryptionContext reverses TestEncryptor.
type TestDecryptionContext struct{}

var _ drawer.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	return mask(w, r)
}
