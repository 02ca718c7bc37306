package database

import (
	"fmt"
	"os"
	"path/filepath"

	"drawer-go/internal/catalog"
	"drawer-go/internal/config"
	"drawer-go/internal/drawer"
)

// Catalog file names inside DatabaseConfig.DataDir.
const (
	SQLiteFile = "catalog.db"
	JSONFile   = "files.json"
)

// NewStoreFromConfig creates a catalog Persister based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig, clock drawer.Clock) (catalog.Persister, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return openSQLite(filepath.Join(cfg.DataDir, SQLiteFile), clock)
	case "json":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for json database")
		}
		store, err := NewJSONStore(filepath.Join(cfg.DataDir, JSONFile))
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return openSQLite(":memory:", clock)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// openSQLite avoids returning a typed nil inside the interface.
func openSQLite(path string, clock drawer.Clock) (catalog.Persister, error) {
	store, err := NewSQLiteStore(path, clock)
	if err != nil {
		return nil, err
	}
	return store, nil
}
