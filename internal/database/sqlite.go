package database

import (
	"context"
	"database/sql"
	"fmt"

	"drawer-go/internal/catalog"
	"drawer-go/internal/database/migrations"
	"drawer-go/internal/drawer"
	"drawer-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists the catalog in SQLite. Every applied change is one
// transaction and appends a row to the operations audit table.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	clock drawer.Clock
}

// NewSQLiteStore opens the database at path, migrating it to the latest schema.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string, clock drawer.Clock) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog database: %w", err)
	}
	return NewSQLiteStoreFromDB(db, path, clock), nil
}

// NewSQLiteStoreFromDB wraps an existing, already migrated connection.
func NewSQLiteStoreFromDB(db *sql.DB, path string, clock drawer.Clock) *SQLiteStore {
	if clock == nil {
		clock = drawer.RealClock{}
	}
	return &SQLiteStore{db: db, path: path, clock: clock}
}

// OpenConnection opens and configures a SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Load reads every folder and file.
func (s *SQLiteStore) Load() (*catalog.Snapshot, error) {
	ctx := context.Background()
	snap := &catalog.Snapshot{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, parent_path, created_at, updated_at FROM folders ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("loading folders: %w", err)
	}
	for rows.Next() {
		var f model.FolderRecord
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.ParentPath, &f.CreatedAt, &f.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning folder: %w", err)
		}
		snap.Folders = append(snap.Folders, f)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("loading folders: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, storage_name, display_name, folder_path, full_path, size, mime_type, created_at, updated_at
		 FROM files ORDER BY full_path`)
	if err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f model.FileRecord
		if err := rows.Scan(&f.ID, &f.StorageName, &f.DisplayName, &f.FolderPath, &f.FullPath,
			&f.Size, &f.MimeType, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		snap.Files = append(snap.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}

	return snap, nil
}

// Apply writes a change in a single transaction.
func (s *SQLiteStore) Apply(change *drawer.Change) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range change.DeleteFiles {
		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting file %s: %w", id, err)
		}
	}
	for _, id := range change.DeleteFolders {
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting folder %s: %w", id, err)
		}
	}

	for _, f := range change.PutFolders {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO folders (id, name, path, parent_path, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   path = excluded.path,
			   parent_path = excluded.parent_path,
			   updated_at = excluded.updated_at`,
			f.ID, f.Name, f.Path, f.ParentPath, f.CreatedAt, f.UpdatedAt)
		if err != nil {
			return fmt.Errorf("writing folder %s: %w", f.Path, err)
		}
	}

	for _, f := range change.PutFiles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO files (id, storage_name, display_name, folder_path, full_path, size, mime_type, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   display_name = excluded.display_name,
			   folder_path = excluded.folder_path,
			   full_path = excluded.full_path,
			   updated_at = excluded.updated_at`,
			f.ID, f.StorageName, f.DisplayName, f.FolderPath, f.FullPath, f.Size, f.MimeType, f.CreatedAt, f.UpdatedAt)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", f.FullPath, err)
		}
	}

	if change.Op != "" {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO operations (operation, detail, at) VALUES (?, ?, ?)`,
			change.Op, change.Detail, s.clock.Now())
		if err != nil {
			return fmt.Errorf("recording operation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListOperations returns the most recent audit entries, newest first.
func (s *SQLiteStore) ListOperations(limit int) ([]*model.Operation, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, operation, detail, at FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		var op model.Operation
		if err := rows.Scan(&op.ID, &op.Operation, &op.Detail, &op.At); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements catalog.Persister interface
var _ catalog.Persister = (*SQLiteStore)(nil)
