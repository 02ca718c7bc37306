package testutil

import (
	"testing"

	"drawer-go/internal/catalog"
	"drawer-go/internal/database"
	"drawer-go/internal/drawer"
	"drawer-go/internal/naming"
)

// NewTestCatalog creates a catalog backed by an in-memory SQLite store.
// The catalog is automatically closed when the test completes.
func NewTestCatalog(t *testing.T, clock drawer.Clock, idgen drawer.IDGenerator) *catalog.Catalog {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:", clock)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	c, err := catalog.Open(store, clock, idgen, naming.DefaultPolicy())
	if err != nil {
		store.Close()
		t.Fatalf("failed to open catalog: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
	})

	return c
}
