package drawer

import (
	"path"
	"strings"
)

// NamePolicy validates user-supplied names before they reach the catalog.
// Failures carry KindInvalidName.
type NamePolicy interface {
	ValidateFolderName(name string) error
	ValidateFolderPath(path string) error
	ValidateFileName(name string) error
	Denied(name string) bool
}

// maxStorageBase bounds the readable part of a storage name.
const maxStorageBase = 100

// StorageName builds the on-disk name for an upload: the display base name
// reduced to a safe character set, then "-"+unique, then the extension.
// Two uploads of the same display name never share a storage name.
func StorageName(displayName, unique string) string {
	ext := path.Ext(displayName)
	base := sanitizeStorage(strings.TrimSuffix(displayName, ext))
	if base == "" {
		base = "file"
	}
	if len(base) > maxStorageBase {
		base = base[:maxStorageBase]
	}
	ext = sanitizeStorage(strings.TrimPrefix(ext, "."))
	if ext != "" {
		ext = "." + ext
	}
	return base + "-" + unique + ext
}

func sanitizeStorage(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
