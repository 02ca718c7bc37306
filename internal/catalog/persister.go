package catalog

import (
	"drawer-go/internal/drawer"
	"drawer-go/internal/model"
)

// Snapshot is the full persisted state, loaded once when a Catalog opens.
type Snapshot struct {
	Files   []model.FileRecord
	Folders []model.FolderRecord
}

// Persister stores catalog state durably.
// Apply must be atomic: either the whole change is stored or none of it.
type Persister interface {
	// Load returns every stored record.
	Load() (*Snapshot, error)

	// Apply stores a change. Deletes are applied before puts.
	Apply(change *drawer.Change) error

	// Close releases the underlying storage.
	Close() error
}
