package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetDefaults returns application default paths, checking environment variables first.
// An optional dotenv file is loaded before the environment is read; variables
// already set in the process win over the file.
// Environment variables:
//   - DRAWER_ENV_FILE: dotenv file to load (default: .env in the working directory)
//   - DRAWER_CONFIG_PATH: config file location (default: ~/.config/drawer.toml)
//   - DRAWER_HOME: base directory for drawer data (default: ~/.local/share/drawer)
//   - DRAWER_LISTEN: listen address overriding the config file
func GetDefaults() (map[string]string, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"listen":      os.Getenv("DRAWER_LISTEN"),
	}, nil
}

// loadEnvFile loads DRAWER_ENV_FILE, or .env. A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv("DRAWER_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// getConfigPath returns the config file path, checking DRAWER_CONFIG_PATH env var first,
// then falling back to the default ~/.config/drawer.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("DRAWER_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "drawer.toml"), nil
}

// getBaseDir returns the base directory for drawer data, checking DRAWER_HOME env var first,
// then falling back to the XDG default ~/.local/share/drawer.
func getBaseDir() (string, error) {
	if path := os.Getenv("DRAWER_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "drawer"), nil
}
