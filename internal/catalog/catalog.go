package catalog

import (
	"fmt"
	"sync"

	"drawer-go/internal/drawer"
	"drawer-go/internal/model"
)

// Catalog is the in-memory metadata store backed by a Persister.
// Records are stored by value and replaced whole on mutation, so a reader never
// observes a half-rewritten cascade. Reads take the read lock; Commit takes the
// write lock and persists before touching memory.
type Catalog struct {
	mu        sync.RWMutex
	persister Persister
	clock     drawer.Clock
	idgen     drawer.IDGenerator
	names     drawer.NamePolicy
	version   uint64

	files     map[string]model.FileRecord   // id -> record
	filePaths map[string]string             // fullPath -> id
	folders   map[string]model.FolderRecord // path -> record
	folderIDs map[string]string             // id -> path
}

// Open loads the persisted snapshot and returns a ready Catalog.
// The Catalog owns the persister and closes it on Close.
func Open(p Persister, clock drawer.Clock, idgen drawer.IDGenerator, names drawer.NamePolicy) (*Catalog, error) {
	snap, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	c := &Catalog{
		persister: p,
		clock:     clock,
		idgen:     idgen,
		names:     names,
		files:     make(map[string]model.FileRecord, len(snap.Files)),
		filePaths: make(map[string]string, len(snap.Files)),
		folders:   make(map[string]model.FolderRecord, len(snap.Folders)),
		folderIDs: make(map[string]string, len(snap.Folders)),
	}

	for _, f := range snap.Folders {
		if _, dup := c.folders[f.Path]; dup {
			return nil, fmt.Errorf("loading catalog: duplicate folder path %s", f.Path)
		}
		c.folders[f.Path] = f
		c.folderIDs[f.ID] = f.Path
	}
	for _, f := range snap.Files {
		if _, dup := c.filePaths[f.FullPath]; dup {
			return nil, fmt.Errorf("loading catalog: duplicate file path %s", f.FullPath)
		}
		c.files[f.ID] = f
		c.filePaths[f.FullPath] = f.ID
	}

	return c, nil
}

// Commit persists a plan and applies it in memory.
// A plan computed against an older version is rejected with KindConflict.
// If the persister fails, in-memory state is left untouched.
func (c *Catalog) Commit(plan *drawer.Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitLocked(plan)
}

func (c *Catalog) commitLocked(plan *drawer.Plan) error {
	if plan.Version != c.version {
		return drawer.Errorf(drawer.KindConflict, plan.Op, "catalog changed since the operation was planned")
	}
	if plan.Change.Empty() {
		return nil
	}
	if err := c.persister.Apply(&plan.Change); err != nil {
		return drawer.WrapIO(plan.Op, err)
	}
	c.applyLocked(&plan.Change)
	c.version++
	return nil
}

// applyLocked mirrors a persisted change into the maps.
// Old keys are dropped before new ones are inserted so a cascade may move
// records onto paths vacated within the same change.
func (c *Catalog) applyLocked(ch *drawer.Change) {
	for _, id := range ch.DeleteFiles {
		if f, ok := c.files[id]; ok {
			delete(c.filePaths, f.FullPath)
			delete(c.files, id)
		}
	}
	for _, id := range ch.DeleteFolders {
		if p, ok := c.folderIDs[id]; ok {
			delete(c.folders, p)
			delete(c.folderIDs, id)
		}
	}

	for _, f := range ch.PutFolders {
		if old, ok := c.folderIDs[f.ID]; ok {
			delete(c.folders, old)
		}
	}
	for _, f := range ch.PutFolders {
		c.folders[f.Path] = f
		c.folderIDs[f.ID] = f.Path
	}

	for _, f := range ch.PutFiles {
		if old, ok := c.files[f.ID]; ok {
			delete(c.filePaths, old.FullPath)
		}
	}
	for _, f := range ch.PutFiles {
		c.files[f.ID] = f
		c.filePaths[f.FullPath] = f.ID
	}
}

// Version returns the number of committed changes since Open.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Close closes the persister.
func (c *Catalog) Close() error {
	return c.persister.Close()
}

// Compile-time check that Catalog implements drawer.Catalog interface
var _ drawer.Catalog = (*Catalog)(nil)
