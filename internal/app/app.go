package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"drawer-go/internal/catalog"
	"drawer-go/internal/config"
	"drawer-go/internal/database"
	"drawer-go/internal/drawer"
	"drawer-go/internal/encryption"
	"drawer-go/internal/model"
	"drawer-go/internal/naming"
	"drawer-go/internal/server"
	"drawer-go/internal/vault"
)

// DrawerApp is the application layer between the CLI and drawer.Service.
// It constructs all dependencies from config, exposes operations that take
// local paths and raw strings, and releases the catalog on Close.
type DrawerApp struct {
	cfg       *config.Config
	store     catalog.Persister
	catalog   *catalog.Catalog
	vault     drawer.Vault
	encryptor drawer.Encryptor
	clock     drawer.Clock
	logger    *slogAdapter
	service   *drawer.Service
	run       *Run
	logFile   *os.File
}

// NewDrawerApp creates a fully wired DrawerApp from the given config.
// command names the CLI command being run; "serve" also echoes logs to stderr.
// The caller must call Close when done.
func NewDrawerApp(cfg *config.Config, command string) (*DrawerApp, error) {
	clock := drawer.RealClock{}
	run := NewRun(command, clock)

	l, logFile, err := newLogger(cfg.LogDir, run.ID, command == "serve")
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	a, err := wire(cfg, clock, logger)
	if err != nil {
		logger.Error("startup failed", "command", command, "error", err)
		logFile.Close()
		return nil, err
	}
	a.run = run
	a.logFile = logFile
	logger.Debug("run started", "command", command)
	return a, nil
}

// wire builds the store, catalog, vault and service.
func wire(cfg *config.Config, clock drawer.Clock, logger *slogAdapter) (*DrawerApp, error) {
	names, err := naming.NewPolicy(cfg.Naming.FolderPattern, cfg.Naming.Deny)
	if err != nil {
		return nil, fmt.Errorf("creating naming policy: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database, clock)
	if err != nil {
		return nil, fmt.Errorf("creating catalog store: %w", err)
	}

	idgen := drawer.UUIDGenerator{}
	cat, err := catalog.Open(store, clock, idgen, names)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	return &DrawerApp{
		cfg:       cfg,
		store:     store,
		catalog:   cat,
		vault:     v,
		encryptor: enc,
		clock:     clock,
		logger:    logger,
		service:   drawer.NewService(cat, v, names, logger, idgen),
	}, nil
}

// Service returns the wired drawer service.
func (a *DrawerApp) Service() *drawer.Service {
	return a.service
}

// Fail records err as the outcome of the run.
func (a *DrawerApp) Fail(err error) {
	a.run.Fail(err)
}

// Serve checks the vault and serves HTTP until ctx is cancelled.
// An empty listen uses the configured address.
func (a *DrawerApp) Serve(ctx context.Context, listen string) error {
	if err := a.vault.ValidateSetup(); err != nil {
		return fmt.Errorf("validating vault: %w", err)
	}
	if listen == "" {
		listen = a.cfg.Server.Listen
	}
	return server.New(a.service, a.logger, a.cfg.Server).ListenAndServe(ctx, listen)
}

// mimeTypeFor guesses a MIME type from the file extension, without parameters.
func mimeTypeFor(name string) string {
	t := mime.TypeByExtension(filepath.Ext(name))
	if t == "" {
		return drawer.DefaultMimeType
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return drawer.DefaultMimeType
	}
	return mediaType
}

// PutFile stores the local file at localPath in folderPath. An empty name
// keeps the local base name.
func (a *DrawerApp) PutFile(localPath, folderPath, name string) (model.FileRecord, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return model.FileRecord{}, fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	if name == "" {
		name = filepath.Base(localPath)
	}
	return a.service.AddFile(folderPath, name, mimeTypeFor(name), f)
}

// GetFile writes a stored file to destPath. When destPath is an existing
// directory the file keeps its display name inside it.
func (a *DrawerApp) GetFile(id, destPath string) (model.FileRecord, error) {
	c, err := a.service.OpenContent(id, "")
	if err != nil {
		return model.FileRecord{}, err
	}
	defer c.Body.Close()

	if info, err := os.Stat(destPath); err == nil && info.IsDir() {
		destPath = filepath.Join(destPath, c.File.DisplayName)
	}
	if err := writeFileAtomic(destPath, c.Body); err != nil {
		return model.FileRecord{}, err
	}
	return c.File, nil
}

func writeFileAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// errNeedsSQLite is returned by features that read the SQLite catalog directly.
var errNeedsSQLite = errors.New("this command requires the sqlite catalog (database.type = \"sqlite\")")

func (a *DrawerApp) sqliteStore() (*database.SQLiteStore, error) {
	s, ok := a.store.(*database.SQLiteStore)
	if !ok {
		return nil, errNeedsSQLite
	}
	return s, nil
}

// History returns the most recent catalog mutations.
func (a *DrawerApp) History(limit int) ([]*model.Operation, error) {
	s, err := a.sqliteStore()
	if err != nil {
		return nil, err
	}
	return s.ListOperations(limit)
}

// BackupCatalog snapshots the catalog and encrypts the snapshot to destPath.
// Only the public key is needed.
func (a *DrawerApp) BackupCatalog(destPath string) error {
	s, err := a.sqliteStore()
	if err != nil {
		return err
	}
	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not found: run 'drawer keys init' first")
	}

	tmpDir, err := os.MkdirTemp("", "drawer-catalog-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, database.SQLiteFile)
	if err := s.BackupTo(snapshot); err != nil {
		return err
	}
	if err := encryption.EncryptFile(a.encryptor, snapshot, destPath); err != nil {
		return fmt.Errorf("encrypting catalog backup: %w", err)
	}
	a.logger.Info("catalog backed up", "dest", destPath)
	return nil
}

// Close logs the run outcome and closes the catalog and log file.
func (a *DrawerApp) Close() error {
	var firstErr error

	if err := a.catalog.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
		a.run.Fail(firstErr)
	}

	args := []any{"command", a.run.Command, "status", a.run.Status, "elapsed", a.run.Elapsed(a.clock)}
	if a.run.Err != nil {
		a.logger.Error("run finished", append(args, "error", a.run.Err)...)
	} else {
		a.logger.Debug("run finished", args...)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// InitKeys generates the backup key pair, protecting the private key with
// passphrase. Existing keys are never overwritten.
func InitKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	return nil
}

// RestoreCatalog decrypts a catalog backup and installs it as the SQLite
// catalog. The backup must open as a valid catalog before it replaces the
// current one. No DrawerApp may hold the catalog open while this runs.
func RestoreCatalog(cfg *config.Config, srcPath, passphrase string) error {
	if cfg.Database.Type != "sqlite" {
		return errNeedsSQLite
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	staged := filepath.Join(cfg.Database.DataDir, ".restore-"+database.SQLiteFile)
	defer os.Remove(staged)

	if err := encryption.DecryptFile(dc, srcPath, staged); err != nil {
		return fmt.Errorf("decrypting catalog backup: %w", err)
	}
	if err := checkCatalog(staged); err != nil {
		return fmt.Errorf("backup is not a usable catalog: %w", err)
	}
	if err := os.Rename(staged, filepath.Join(cfg.Database.DataDir, database.SQLiteFile)); err != nil {
		return fmt.Errorf("installing restored catalog: %w", err)
	}
	return nil
}

// checkCatalog opens the SQLite catalog at path and loads it.
func checkCatalog(path string) error {
	store, err := database.NewSQLiteStore(path, nil)
	if err != nil {
		return err
	}
	cat, err := catalog.Open(store, drawer.RealClock{}, drawer.UUIDGenerator{}, naming.DefaultPolicy())
	if err != nil {
		store.Close()
		return err
	}
	return cat.Close()
}
