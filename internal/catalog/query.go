package catalog

import (
	"cmp"
	"slices"
	"strings"

	"drawer-go/internal/drawer"
	"drawer-go/internal/model"
)

func sortFilesNewestFirst(files []model.FileRecord) {
	slices.SortFunc(files, func(a, b model.FileRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortFilesByName(files []model.FileRecord) {
	slices.SortFunc(files, func(a, b model.FileRecord) int {
		if c := strings.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortFilesByPath(files []model.FileRecord) {
	slices.SortFunc(files, func(a, b model.FileRecord) int { return strings.Compare(a.FullPath, b.FullPath) })
}

func sortFoldersByPath(folders []model.FolderRecord) {
	slices.SortFunc(folders, func(a, b model.FolderRecord) int { return strings.Compare(a.Path, b.Path) })
}

func (c *Catalog) GetFile(id string) (model.FileRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[id]
	return f, ok
}

func (c *Catalog) GetFolder(path string) (model.FolderRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.folders[drawer.NormalizePath(path)]
	return f, ok
}

// FolderExists reports whether path names a stored folder or root.
func (c *Catalog) FolderExists(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.folderExistsLocked(drawer.NormalizePath(path))
}

// FileExistsInFolder reports whether a file with exactly this display name
// lives directly in parentPath.
func (c *Catalog) FileExistsInFolder(parentPath, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.filePaths[drawer.JoinPath(drawer.NormalizePath(parentPath), name)]
	return ok
}

func (c *Catalog) ListChildren(parentPath string, order drawer.FileOrder) ([]model.FileRecord, []model.FolderRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parent := drawer.NormalizePath(parentPath)
	if !c.folderExistsLocked(parent) {
		return nil, nil, drawer.Errorf(drawer.KindNotFound, "ListChildren", "folder %s not found", parent)
	}

	files := []model.FileRecord{}
	for _, f := range c.files {
		if f.FolderPath == parent {
			files = append(files, f)
		}
	}
	folders := []model.FolderRecord{}
	for _, f := range c.folders {
		if f.ParentPath == parent {
			folders = append(folders, f)
		}
	}

	if order == drawer.ByName {
		sortFilesByName(files)
	} else {
		sortFilesNewestFirst(files)
	}
	slices.SortFunc(folders, func(a, b model.FolderRecord) int { return strings.Compare(a.Name, b.Name) })
	return files, folders, nil
}

// AllFiles returns every file, newest first.
func (c *Catalog) AllFiles() []model.FileRecord {
	return c.filterFiles(func(model.FileRecord) bool { return true })
}

// AllFolders returns every folder sorted by path.
func (c *Catalog) AllFolders() []model.FolderRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	folders := make([]model.FolderRecord, 0, len(c.folders))
	for _, f := range c.folders {
		folders = append(folders, f)
	}
	sortFoldersByPath(folders)
	return folders
}

// Tree returns the top-level folders with their subfolders nested beneath them.
func (c *Catalog) Tree() []*model.FolderNode {
	folders := c.AllFolders()
	nodes := make(map[string]*model.FolderNode, len(folders))
	roots := []*model.FolderNode{}
	// Sorted by path, so a parent is always seen before its children.
	for _, f := range folders {
		n := &model.FolderNode{FolderRecord: f, Children: []*model.FolderNode{}}
		nodes[f.Path] = n
		if parent, ok := nodes[f.ParentPath]; ok {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	return roots
}

// Stats summarizes file and folder counts, total size and MIME type usage.
func (c *Catalog) Stats() model.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := model.Stats{TotalFiles: len(c.files), TotalFolders: len(c.folders), MimeTypes: []model.MimeTypeCount{}}
	counts := make(map[string]int)
	for _, f := range c.files {
		s.TotalSize += f.Size
		mt := f.MimeType
		if mt == "" {
			mt = "unknown"
		}
		counts[mt]++
	}
	for mt, n := range counts {
		s.MimeTypes = append(s.MimeTypes, model.MimeTypeCount{MimeType: mt, Count: n})
	}
	slices.SortFunc(s.MimeTypes, func(a, b model.MimeTypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.MimeType, b.MimeType)
	})
	return s
}

// Search matches query case-insensitively against display name, storage name
// and MIME type. An empty query matches everything.
func (c *Catalog) Search(query string) []model.FileRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	return c.filterFiles(func(f model.FileRecord) bool {
		return strings.Contains(strings.ToLower(f.DisplayName), q) ||
			strings.Contains(strings.ToLower(f.StorageName), q) ||
			strings.Contains(strings.ToLower(f.MimeType), q)
	})
}

// FilesByType returns files whose MIME type equals mimeType exactly.
func (c *Catalog) FilesByType(mimeType string) []model.FileRecord {
	return c.filterFiles(func(f model.FileRecord) bool { return f.MimeType == mimeType })
}

func (c *Catalog) filterFiles(keep func(model.FileRecord) bool) []model.FileRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	files := []model.FileRecord{}
	for _, f := range c.files {
		if keep(f) {
			files = append(files, f)
		}
	}
	sortFilesNewestFirst(files)
	return files
}
