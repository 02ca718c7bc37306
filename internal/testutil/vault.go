package testutil

import (
	"drawer-go/internal/drawer"
	"drawer-go/internal/vault"
)

// NewTestVault creates an empty in-memory vault.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault()
}

var _ drawer.Vault = (*vault.MemoryVault)(nil)
