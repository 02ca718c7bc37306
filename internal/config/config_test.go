package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/drawer",
		LogDir:  "/home/user/.local/share/drawer/log",
		Server: ServerConfig{
			Listen:        "0.0.0.0:9000",
			MaxUploadSize: 4096,
			CORSOrigins:   []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/drawer/db"},
		Vault: VaultConfig{
			Type:       "s3",
			S3Bucket:   "uploads",
			S3Prefix:   "drawer",
			S3Region:   "auto",
			S3Endpoint: "https://account.r2.cloudflarestorage.com",
		},
		Naming: NamingConfig{
			FolderPattern: `^[a-z]+$`,
			Deny:          []string{"*.exe", ".DS_Store"},
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/drawer/keys/drawer.pub",
			PrivateKeyPath: "/home/user/.local/share/drawer/keys/drawer.key",
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Server.Listen != "0.0.0.0:9000" {
		t.Errorf("Server.Listen = %q, want %q", got.Server.Listen, "0.0.0.0:9000")
	}
	if got.Server.MaxUploadSize != 4096 {
		t.Errorf("Server.MaxUploadSize = %d, want %d", got.Server.MaxUploadSize, 4096)
	}
	if len(got.Server.CORSOrigins) != 1 {
		t.Fatalf("len(Server.CORSOrigins) = %d, want 1", len(got.Server.CORSOrigins))
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Vault.Type != "s3" {
		t.Errorf("Vault.Type = %q, want %q", got.Vault.Type, "s3")
	}
	if got.Vault.S3Endpoint != original.Vault.S3Endpoint {
		t.Errorf("Vault.S3Endpoint = %q, want %q", got.Vault.S3Endpoint, original.Vault.S3Endpoint)
	}
	if got.Naming.FolderPattern != `^[a-z]+$` {
		t.Errorf("Naming.FolderPattern = %q, want %q", got.Naming.FolderPattern, `^[a-z]+$`)
	}
	if len(got.Naming.Deny) != 2 {
		t.Fatalf("len(Naming.Deny) = %d, want 2", len(got.Naming.Deny))
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
}

func TestManager_Read_DefaultsMaxUploadSize(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader("base_dir = \"/data\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Server.MaxUploadSize != DefaultMaxUploadSize {
		t.Errorf("Server.MaxUploadSize = %d, want %d", got.Server.MaxUploadSize, DefaultMaxUploadSize)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/drawer")

	if cfg.BaseDir != "/data/drawer" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/drawer")
	}
	if cfg.LogDir != "/data/drawer/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/drawer/log")
	}
	if cfg.Database.DataDir != "/data/drawer/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/drawer/db")
	}
	if cfg.Vault.Root != "/data/drawer/uploads" {
		t.Errorf("Vault.Root = %q, want %q", cfg.Vault.Root, "/data/drawer/uploads")
	}
	if cfg.Encryption.PublicKeyPath != "/data/drawer/keys/drawer.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/drawer/keys/drawer.pub")
	}
	if cfg.Server.MaxUploadSize != DefaultMaxUploadSize {
		t.Errorf("Server.MaxUploadSize = %d, want %d", cfg.Server.MaxUploadSize, DefaultMaxUploadSize)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "drawer.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "drawer.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "drawer.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
		if got.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/drawer.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
