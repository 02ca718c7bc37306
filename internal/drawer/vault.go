package drawer

import "io"

// Vault places file bytes in physical storage. Locations are opaque strings
// produced by Location and IncomingLocation; callers never build them.
// Failures carry KindNotFound or KindIOError.
type Vault interface {
	// Location maps a logical folder path and storage name to a physical
	// location. It never touches storage.
	Location(folderPath, storageName string) string

	// IncomingLocation is where an upload is spooled before it is placed.
	IncomingLocation(storageName string) string

	// EnsureDirectory creates the physical directory for a folder and any
	// missing parents. Idempotent.
	EnsureDirectory(folderPath string) error

	// Write stores everything read from r at location and returns the byte
	// count. A partially written location is never left behind.
	Write(location string, r io.Reader) (int64, error)

	// Stat returns the size of the bytes at location.
	Stat(location string) (int64, error)

	// Open returns a reader over length bytes starting at offset.
	// A negative length reads to the end.
	Open(location string, offset, length int64) (io.ReadCloser, error)

	// Move renames bytes from one location to another.
	Move(oldLocation, newLocation string) error

	// MoveDirectory moves a folder's physical directory with everything below it.
	// A folder that has no physical directory yet is not an error.
	MoveDirectory(oldFolderPath, newFolderPath string) error

	// Remove deletes the bytes at location. Absence is not an error.
	Remove(location string) error

	// RemoveDirectory deletes a folder's directory and everything below it.
	// Absence is not an error.
	RemoveDirectory(folderPath string) error

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
