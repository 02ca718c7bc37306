package catalog

import (
	"slices"
	"strings"
	"time"

	"drawer-go/internal/drawer"
	"drawer-go/internal/model"
)

// Audit operation names written with each change.
const (
	opCreateFolder = "create_folder"
	opCreateFile   = "create_file"
	opRenameFile   = "rename_file"
	opMoveFile     = "move_file"
	opRenameFolder = "rename_folder"
	opMoveFolder   = "move_folder"
	opDeleteFile   = "delete_file"
	opDeleteFolder = "delete_folder"
	opPruneFiles   = "prune_files"
)

func (c *Catalog) folderExistsLocked(path string) bool {
	if path == drawer.RootPath {
		return true
	}
	_, ok := c.folders[path]
	return ok
}

func (c *Catalog) newPlan(op string) *drawer.Plan {
	return &drawer.Plan{Op: op, Version: c.version}
}

func (c *Catalog) PlanCreateFolder(name, parentPath string) (*drawer.Plan, error) {
	const op = "CreateFolder"
	c.mu.RLock()
	defer c.mu.RUnlock()

	parent := drawer.NormalizePath(parentPath)
	if err := c.names.ValidateFolderName(name); err != nil {
		return nil, drawer.WithOp(op, err)
	}
	if !c.folderExistsLocked(parent) {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "parent folder %s not found", parent)
	}
	path := drawer.JoinPath(parent, name)
	if c.folderExistsLocked(path) {
		return nil, drawer.Errorf(drawer.KindConflict, op, "folder %s already exists", path)
	}

	now := c.clock.Now()
	rec := model.FolderRecord{
		ID:         c.idgen.New(),
		Name:       name,
		Path:       path,
		ParentPath: parent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	plan := c.newPlan(op)
	plan.Folder = rec
	plan.Change = drawer.Change{Op: opCreateFolder, Detail: path, PutFolders: []model.FolderRecord{rec}}
	return plan, nil
}

// PlanCreateFile validates a new file record. The storage name is trusted to be
// unique; the display name must be free in the target folder.
func (c *Catalog) PlanCreateFile(nf model.NewFile) (*drawer.Plan, error) {
	const op = "CreateFile"
	c.mu.RLock()
	defer c.mu.RUnlock()

	folder := drawer.NormalizePath(nf.FolderPath)
	if err := c.names.ValidateFileName(nf.DisplayName); err != nil {
		return nil, drawer.WithOp(op, err)
	}
	if nf.StorageName == "" {
		return nil, drawer.Errorf(drawer.KindBadRequest, op, "storage name is required")
	}
	if nf.Size < 0 {
		return nil, drawer.Errorf(drawer.KindBadRequest, op, "negative size")
	}
	if !c.folderExistsLocked(folder) {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "folder %s not found", folder)
	}
	fullPath := drawer.JoinPath(folder, nf.DisplayName)
	if _, taken := c.filePaths[fullPath]; taken {
		return nil, drawer.Errorf(drawer.KindConflict, op, "a file named %q already exists in %s", nf.DisplayName, folder)
	}

	now := c.clock.Now()
	rec := model.FileRecord{
		ID:          c.idgen.New(),
		StorageName: nf.StorageName,
		DisplayName: nf.DisplayName,
		FolderPath:  folder,
		FullPath:    fullPath,
		Size:        nf.Size,
		MimeType:    nf.MimeType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	plan := c.newPlan(op)
	plan.File = rec
	plan.Change = drawer.Change{Op: opCreateFile, Detail: fullPath, PutFiles: []model.FileRecord{rec}}
	return plan, nil
}

func (c *Catalog) PlanRenameFile(id, newName string) (*drawer.Plan, error) {
	const op = "RenameFile"
	c.mu.RLock()
	defer c.mu.RUnlock()

	prev, ok := c.files[id]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "file %s not found", id)
	}
	if err := c.names.ValidateFileName(newName); err != nil {
		return nil, drawer.WithOp(op, err)
	}
	return c.planFilePlacement(op, opRenameFile, prev, prev.FolderPath, newName)
}

func (c *Catalog) PlanMoveFile(id, newParentPath string) (*drawer.Plan, error) {
	const op = "MoveFile"
	c.mu.RLock()
	defer c.mu.RUnlock()

	prev, ok := c.files[id]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "file %s not found", id)
	}
	target := drawer.NormalizePath(newParentPath)
	if !c.folderExistsLocked(target) {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "folder %s not found", target)
	}
	return c.planFilePlacement(op, opMoveFile, prev, target, prev.DisplayName)
}

// planFilePlacement plans a file landing at folder/name. Landing where it
// already is yields an empty change.
func (c *Catalog) planFilePlacement(op, auditOp string, prev model.FileRecord, folder, name string) (*drawer.Plan, error) {
	plan := c.newPlan(op)
	plan.PrevFile = prev
	plan.File = prev

	fullPath := drawer.JoinPath(folder, name)
	if fullPath == prev.FullPath {
		return plan, nil
	}
	if other, taken := c.filePaths[fullPath]; taken && other != prev.ID {
		return nil, drawer.Errorf(drawer.KindConflict, op, "a file named %q already exists in %s", name, folder)
	}

	next := prev
	next.DisplayName = name
	next.FolderPath = folder
	next.FullPath = fullPath
	next.UpdatedAt = c.clock.Now()

	plan.File = next
	plan.Change = drawer.Change{
		Op:       auditOp,
		Detail:   prev.FullPath + " -> " + fullPath,
		PutFiles: []model.FileRecord{next},
	}
	return plan, nil
}

func (c *Catalog) PlanRenameFolder(path, newName string) (*drawer.Plan, error) {
	const op = "RenameFolder"
	c.mu.RLock()
	defer c.mu.RUnlock()

	path = drawer.NormalizePath(path)
	if path == drawer.RootPath {
		return nil, drawer.Errorf(drawer.KindBadRequest, op, "the root folder cannot be renamed")
	}
	prev, ok := c.folders[path]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "folder %s not found", path)
	}
	if err := c.names.ValidateFolderName(newName); err != nil {
		return nil, drawer.WithOp(op, err)
	}
	return c.planFolderPlacement(op, opRenameFolder, prev, drawer.JoinPath(prev.ParentPath, newName))
}

func (c *Catalog) PlanMoveFolder(path, newParentPath string) (*drawer.Plan, error) {
	const op = "MoveFolder"
	c.mu.RLock()
	defer c.mu.RUnlock()

	path = drawer.NormalizePath(path)
	target := drawer.NormalizePath(newParentPath)
	if path == drawer.RootPath {
		return nil, drawer.Errorf(drawer.KindBadRequest, op, "the root folder cannot be moved")
	}
	prev, ok := c.folders[path]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "folder %s not found", path)
	}
	if !c.folderExistsLocked(target) {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "folder %s not found", target)
	}
	if drawer.IsSameOrDescendant(target, path) {
		return nil, drawer.Errorf(drawer.KindBadRequest, op, "cannot move %s into itself", path)
	}
	return c.planFolderPlacement(op, opMoveFolder, prev, drawer.JoinPath(target, prev.Name))
}

// planFolderPlacement plans moving the folder at prev.Path to newPath and
// rewrites every descendant folder and file. Either every record is rewritten
// or the plan fails.
func (c *Catalog) planFolderPlacement(op, auditOp string, prev model.FolderRecord, newPath string) (*drawer.Plan, error) {
	plan := c.newPlan(op)
	plan.PrevFolder = prev
	plan.Folder = prev
	if newPath == prev.Path {
		return plan, nil
	}
	if c.folderExistsLocked(newPath) {
		return nil, drawer.Errorf(drawer.KindConflict, op, "folder %s already exists", newPath)
	}

	folders, files, err := c.cascadeLocked(op, prev.Path, newPath, c.clock.Now())
	if err != nil {
		return nil, err
	}
	for _, f := range folders {
		if f.ID == prev.ID {
			plan.Folder = f
			break
		}
	}
	plan.Change = drawer.Change{
		Op:         auditOp,
		Detail:     prev.Path + " -> " + newPath,
		PutFolders: folders,
		PutFiles:   files,
	}
	return plan, nil
}

// cascadeLocked returns every folder at or below oldPath and every file inside
// those folders, rewritten to live under newPath.
func (c *Catalog) cascadeLocked(op, oldPath, newPath string, now time.Time) ([]model.FolderRecord, []model.FileRecord, error) {
	var folders []model.FolderRecord
	moving := make(map[string]bool)
	for p, f := range c.folders {
		if !drawer.IsSameOrDescendant(p, oldPath) {
			continue
		}
		next := f
		next.Path = drawer.RewritePrefix(f.Path, oldPath, newPath)
		next.ParentPath = drawer.ParentPath(next.Path)
		next.Name = drawer.BaseName(next.Path)
		next.UpdatedAt = now
		folders = append(folders, next)
		moving[f.ID] = true
	}
	for _, f := range folders {
		if existing, ok := c.folders[f.Path]; ok && !moving[existing.ID] {
			return nil, nil, drawer.Errorf(drawer.KindConflict, op, "folder %s already exists", f.Path)
		}
	}

	var files []model.FileRecord
	for _, f := range c.files {
		if !drawer.IsSameOrDescendant(f.FolderPath, oldPath) {
			continue
		}
		next := f
		next.FolderPath = drawer.RewritePrefix(f.FolderPath, oldPath, newPath)
		next.FullPath = drawer.JoinPath(next.FolderPath, next.DisplayName)
		next.UpdatedAt = now
		files = append(files, next)
		moving[f.ID] = true
	}
	for _, f := range files {
		if id, ok := c.filePaths[f.FullPath]; ok && !moving[id] {
			return nil, nil, drawer.Errorf(drawer.KindConflict, op, "file %s already exists", f.FullPath)
		}
	}

	slices.SortFunc(folders, func(a, b model.FolderRecord) int { return strings.Compare(a.Path, b.Path) })
	slices.SortFunc(files, func(a, b model.FileRecord) int { return strings.Compare(a.FullPath, b.FullPath) })
	return folders, files, nil
}

func (c *Catalog) PlanDeleteFile(id string) (*drawer.Plan, error) {
	const op = "DeleteFile"
	c.mu.RLock()
	defer c.mu.RUnlock()

	prev, ok := c.files[id]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "file %s not found", id)
	}
	plan := c.newPlan(op)
	plan.PrevFile = prev
	plan.Removed.Files = []model.FileRecord{prev}
	plan.Change = drawer.Change{Op: opDeleteFile, Detail: prev.FullPath, DeleteFiles: []string{prev.ID}}
	return plan, nil
}

// PlanDeleteFolder removes a folder together with every descendant folder and file.
func (c *Catalog) PlanDeleteFolder(path string) (*drawer.Plan, error) {
	const op = "DeleteFolder"
	c.mu.RLock()
	defer c.mu.RUnlock()

	path = drawer.NormalizePath(path)
	if path == drawer.RootPath {
		return nil, drawer.Errorf(drawer.KindBadRequest, op, "the root folder cannot be deleted")
	}
	prev, ok := c.folders[path]
	if !ok {
		return nil, drawer.Errorf(drawer.KindNotFound, op, "folder %s not found", path)
	}

	plan := c.newPlan(op)
	plan.PrevFolder = prev
	for p, f := range c.folders {
		if drawer.IsSameOrDescendant(p, path) {
			plan.Removed.Folders = append(plan.Removed.Folders, f)
		}
	}
	for _, f := range c.files {
		if drawer.IsSameOrDescendant(f.FolderPath, path) {
			plan.Removed.Files = append(plan.Removed.Files, f)
		}
	}
	sortFoldersByPath(plan.Removed.Folders)
	sortFilesByPath(plan.Removed.Files)

	plan.Change = drawer.Change{Op: opDeleteFolder, Detail: path}
	for _, f := range plan.Removed.Folders {
		plan.Change.DeleteFolders = append(plan.Change.DeleteFolders, f.ID)
	}
	for _, f := range plan.Removed.Files {
		plan.Change.DeleteFiles = append(plan.Change.DeleteFiles, f.ID)
	}
	return plan, nil
}

// PlanDeleteFiles removes several file records at once. Unknown IDs are skipped.
func (c *Catalog) PlanDeleteFiles(ids []string) (*drawer.Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	plan := c.newPlan("DeleteFiles")
	plan.Change.Op = opPruneFiles
	for _, id := range ids {
		f, ok := c.files[id]
		if !ok {
			continue
		}
		plan.Removed.Files = append(plan.Removed.Files, f)
		plan.Change.DeleteFiles = append(plan.Change.DeleteFiles, id)
	}
	plan.Change.Detail = strings.Join(plan.Change.DeleteFiles, ",")
	return plan, nil
}
