package drawer

import (
	"sync"

	"drawer-go/internal/model"
)

// Service is the orchestration layer. It pairs every catalog mutation with
// the matching physical operation on the vault and keeps them in order:
// bytes are written before a record is created, moved before a record is
// rewritten, and removed only after the record is gone.
type Service struct {
	// mu serializes plan, physical operation and commit for every mutation.
	mu sync.Mutex

	catalog Catalog
	vault   Vault
	names   NamePolicy
	logger  Logger
	idgen   IDGenerator
}

// NewService creates a Service with the provided dependencies. A nil logger
// discards output.
func NewService(catalog Catalog, vault Vault, names NamePolicy, logger Logger, idgen IDGenerator) *Service {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Service{
		catalog: catalog,
		vault:   vault,
		names:   names,
		logger:  logger,
		idgen:   idgen,
	}
}

// inconsistent logs and reports catalog and storage that no longer agree:
// a commit that failed after the vault changed, or a vault change that
// failed part way. Nothing is rolled back.
func (s *Service) inconsistent(op string, err error, args ...any) error {
	s.logger.Error("catalog and storage diverged", append([]any{"op", op, "error", err}, args...)...)
	if IsKind(err, KindInconsistent) {
		return err
	}
	return &Error{
		Kind:    KindInconsistent,
		Op:      op,
		Message: "storage was changed but the catalog could not be updated",
		Err:     err,
	}
}

// CreateFolder creates the folder record and its physical directory.
func (s *Service) CreateFolder(name, parentPath string) (model.FolderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanCreateFolder(name, parentPath)
	if err != nil {
		return model.FolderRecord{}, err
	}
	if err := s.vault.EnsureDirectory(plan.Folder.Path); err != nil {
		return model.FolderRecord{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		// An empty directory without a record is harmless.
		s.logger.Warn("folder directory left without a record", "path", plan.Folder.Path, "error", err)
		return model.FolderRecord{}, err
	}

	s.logger.Info("folder created", "path", plan.Folder.Path)
	return plan.Folder, nil
}

// RenameFolder renames a folder and rewrites every descendant.
func (s *Service) RenameFolder(path, newName string) (model.FolderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanRenameFolder(path, newName)
	if err != nil {
		return model.FolderRecord{}, err
	}
	return s.relocateFolder(plan)
}

// MoveFolder moves a folder under a new parent and rewrites every descendant.
func (s *Service) MoveFolder(path, newParentPath string) (model.FolderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanMoveFolder(path, newParentPath)
	if err != nil {
		return model.FolderRecord{}, err
	}
	return s.relocateFolder(plan)
}

func (s *Service) relocateFolder(plan *Plan) (model.FolderRecord, error) {
	from, to := plan.PrevFolder.Path, plan.Folder.Path
	if plan.Change.Empty() {
		return plan.Folder, nil
	}

	if err := s.vault.EnsureDirectory(ParentPath(to)); err != nil {
		return model.FolderRecord{}, err
	}
	if err := s.vault.MoveDirectory(from, to); err != nil {
		if IsKind(err, KindInconsistent) {
			return model.FolderRecord{}, s.inconsistent(plan.Op, err, "from", from, "to", to)
		}
		return model.FolderRecord{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		return model.FolderRecord{}, s.inconsistent(plan.Op, err, "from", from, "to", to)
	}

	s.logger.Info("folder relocated", "from", from, "to", to,
		"folders", len(plan.Change.PutFolders), "files", len(plan.Change.PutFiles))
	return plan.Folder, nil
}

// DeleteFolder removes a folder with everything below it. The records go
// first; the directory is then removed on a best-effort basis.
func (s *Service) DeleteFolder(path string) (Removed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanDeleteFolder(path)
	if err != nil {
		return Removed{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		return Removed{}, err
	}
	if err := s.vault.RemoveDirectory(plan.PrevFolder.Path); err != nil {
		s.logger.Warn("folder directory not removed", "path", plan.PrevFolder.Path, "error", err)
	}

	s.logger.Info("folder deleted", "path", plan.PrevFolder.Path,
		"folders", len(plan.Removed.Folders), "files", len(plan.Removed.Files))
	return plan.Removed, nil
}

// RenameFile changes a file's display name. The storage name, and so the
// physical location, does not change.
func (s *Service) RenameFile(id, newName string) (model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanRenameFile(id, newName)
	if err != nil {
		return model.FileRecord{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		return model.FileRecord{}, err
	}

	if !plan.Change.Empty() {
		s.logger.Info("file renamed", "from", plan.PrevFile.FullPath, "to", plan.File.FullPath)
	}
	return plan.File, nil
}

// MoveFile moves a file's bytes into another folder, then rewrites its record.
func (s *Service) MoveFile(id, newParentPath string) (model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanMoveFile(id, newParentPath)
	if err != nil {
		return model.FileRecord{}, err
	}
	if plan.Change.Empty() {
		return plan.File, nil
	}

	prev, next := plan.PrevFile, plan.File
	from := s.vault.Location(prev.FolderPath, prev.StorageName)
	to := s.vault.Location(next.FolderPath, next.StorageName)
	if err := s.vault.EnsureDirectory(next.FolderPath); err != nil {
		return model.FileRecord{}, err
	}
	if err := s.vault.Move(from, to); err != nil {
		return model.FileRecord{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		return model.FileRecord{}, s.inconsistent(plan.Op, err, "id", id, "from", from, "to", to)
	}

	s.logger.Info("file moved", "from", prev.FullPath, "to", next.FullPath)
	return next, nil
}

// DeleteFile removes the record, then the bytes on a best-effort basis.
func (s *Service) DeleteFile(id string) (model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.catalog.PlanDeleteFile(id)
	if err != nil {
		return model.FileRecord{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		return model.FileRecord{}, err
	}

	f := plan.PrevFile
	if err := s.vault.Remove(s.vault.Location(f.FolderPath, f.StorageName)); err != nil {
		s.logger.Warn("file bytes not removed", "path", f.FullPath, "error", err)
	}
	s.logger.Info("file deleted", "path", f.FullPath)
	return f, nil
}

func (s *Service) GetFile(id string) (model.FileRecord, bool) {
	return s.catalog.GetFile(id)
}

func (s *Service) GetFolder(path string) (model.FolderRecord, bool) {
	return s.catalog.GetFolder(path)
}

func (s *Service) ListChildren(parentPath string, order FileOrder) ([]model.FileRecord, []model.FolderRecord, error) {
	return s.catalog.ListChildren(parentPath, order)
}

func (s *Service) AllFiles() []model.FileRecord     { return s.catalog.AllFiles() }
func (s *Service) AllFolders() []model.FolderRecord { return s.catalog.AllFolders() }
func (s *Service) Tree() []*model.FolderNode        { return s.catalog.Tree() }
func (s *Service) Stats() model.Stats               { return s.catalog.Stats() }

func (s *Service) Search(query string) []model.FileRecord {
	return s.catalog.Search(query)
}

func (s *Service) FilesByType(mimeType string) []model.FileRecord {
	return s.catalog.FilesByType(mimeType)
}
