package drawer

import "io"

// Encryptor seals catalog backups. Encryption needs only the public key;
// decryption needs the passphrase that unlocks the private key.
type Encryptor interface {
	// Setup generates the key pair, storing the private key encrypted with passphrase.
	Setup(passphrase string) error

	// Encrypt writes ciphertext of everything read from r to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key. A wrong passphrase is an error.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for one restore.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
