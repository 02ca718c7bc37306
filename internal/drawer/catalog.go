package drawer

import "drawer-go/internal/model"

// FileOrder selects how file listings are sorted.
type FileOrder int

const (
	// NewestFirst sorts files by upload time, newest first. This is the default.
	NewestFirst FileOrder = iota
	// ByName sorts files by display name ascending.
	ByName
)

// ParseFileOrder maps a query value onto a FileOrder. Unknown values select NewestFirst.
func ParseFileOrder(s string) FileOrder {
	if s == "name" {
		return ByName
	}
	return NewestFirst
}

// Change is the delta a committed mutation writes to persistent storage.
// Deletes are applied before puts.
type Change struct {
	Op            string
	Detail        string
	PutFolders    []model.FolderRecord
	PutFiles      []model.FileRecord
	DeleteFolders []string // folder IDs
	DeleteFiles   []string // file IDs
}

// Empty reports whether the change touches no records.
func (c *Change) Empty() bool {
	return len(c.PutFolders) == 0 && len(c.PutFiles) == 0 &&
		len(c.DeleteFolders) == 0 && len(c.DeleteFiles) == 0
}

// Removed lists the records a delete removes, including cascaded descendants.
type Removed struct {
	Folders []model.FolderRecord
	Files   []model.FileRecord
}

// Plan is a validated, not yet applied mutation. It is computed against a
// specific catalog version; committing it after any other commit fails with
// KindConflict.
type Plan struct {
	Op      string
	Version uint64
	Change  Change

	// Primary record before and after the mutation. Only the pair relevant to
	// Op is populated.
	File, PrevFile     model.FileRecord
	Folder, PrevFolder model.FolderRecord

	Removed Removed
}

// Catalog is the metadata store: files and folders with path-consistent,
// cascading mutations. Every mutation is planned first and committed second
// so callers can run a physical operation in between.
type Catalog interface {
	// Lookups return ok=false rather than an error when the record is absent.
	GetFile(id string) (model.FileRecord, bool)
	GetFolder(path string) (model.FolderRecord, bool)
	FolderExists(path string) bool
	FileExistsInFolder(parentPath, name string) bool

	// ListChildren returns the direct children of a folder.
	// Folders are sorted by name; files as requested by order.
	ListChildren(parentPath string, order FileOrder) ([]model.FileRecord, []model.FolderRecord, error)

	AllFiles() []model.FileRecord
	AllFolders() []model.FolderRecord
	Tree() []*model.FolderNode
	Stats() model.Stats
	Search(query string) []model.FileRecord
	FilesByType(mimeType string) []model.FileRecord

	PlanCreateFolder(name, parentPath string) (*Plan, error)
	PlanCreateFile(nf model.NewFile) (*Plan, error)
	PlanRenameFile(id, newName string) (*Plan, error)
	PlanMoveFile(id, newParentPath string) (*Plan, error)
	PlanRenameFolder(path, newName string) (*Plan, error)
	PlanMoveFolder(path, newParentPath string) (*Plan, error)
	PlanDeleteFile(id string) (*Plan, error)
	PlanDeleteFolder(path string) (*Plan, error)
	PlanDeleteFiles(ids []string) (*Plan, error)

	// Commit persists and applies a plan atomically.
	Commit(plan *Plan) error

	Close() error
}
