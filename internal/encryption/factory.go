package encryption

import (
	"fmt"

	"drawer-go/internal/config"
	"drawer-go/internal/drawer"
)

// NewEncryptorFromConfig creates the Encryptor used for catalog backups.
// An empty type selects age.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (drawer.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
