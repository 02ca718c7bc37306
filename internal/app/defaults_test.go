package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("DRAWER_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
		t.Setenv("DRAWER_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("DRAWER_HOME", "/custom/drawer")
		t.Setenv("DRAWER_LISTEN", ":9000")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := map[string]string{
			"config_path": "/custom/config.toml",
			"base_dir":    "/custom/drawer",
			"log_dir":     "/custom/drawer/log",
			"listen":      ":9000",
		}
		for k, v := range want {
			if defaults[k] != v {
				t.Errorf("%s = %q, want %q", k, defaults[k], v)
			}
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("DRAWER_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
		t.Setenv("DRAWER_CONFIG_PATH", "")
		t.Setenv("DRAWER_HOME", "")
		t.Setenv("DRAWER_LISTEN", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "drawer.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "drawer")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}
		if defaults["listen"] != "" {
			t.Errorf("listen = %q, want empty", defaults["listen"])
		}
	})

	t.Run("reads dotenv file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "drawer.env")
		if err := os.WriteFile(envFile, []byte("DRAWER_HOME=/from/dotenv\n"), 0644); err != nil {
			t.Fatalf("writing env file: %v", err)
		}
		t.Setenv("DRAWER_ENV_FILE", envFile)
		t.Setenv("DRAWER_CONFIG_PATH", "/custom/config.toml")
		// Registered so the value loaded from the file is cleared afterwards.
		t.Setenv("DRAWER_HOME", "")
		os.Unsetenv("DRAWER_HOME")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["base_dir"] != "/from/dotenv" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/from/dotenv")
		}
	})

	t.Run("process env wins over dotenv", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "drawer.env")
		if err := os.WriteFile(envFile, []byte("DRAWER_HOME=/from/dotenv\n"), 0644); err != nil {
			t.Fatalf("writing env file: %v", err)
		}
		t.Setenv("DRAWER_ENV_FILE", envFile)
		t.Setenv("DRAWER_HOME", "/from/env")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["base_dir"] != "/from/env" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/from/env")
		}
	})
}
