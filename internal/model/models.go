package model

import "time"

// FileRecord is the catalog entry for one uploaded file.
// FullPath is always FolderPath joined with DisplayName.
type FileRecord struct {
	ID          string    `json:"id"`          // UUID, immutable
	StorageName string    `json:"storageName"` // collision-free on-disk name, never shown to users
	DisplayName string    `json:"displayName"` // user-visible name
	FolderPath  string    `json:"folderPath"`  // normalized containing folder ("/" for root)
	FullPath    string    `json:"fullPath"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	CreatedAt   time.Time `json:"createdAt"` // upload time
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FolderRecord is the catalog entry for one folder. Root is implicit and never stored.
type FolderRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	ParentPath string    `json:"parentPath"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewFile holds the inputs for registering an uploaded file.
type NewFile struct {
	StorageName string
	DisplayName string
	FolderPath  string
	Size        int64
	MimeType    string
}

// FolderNode is a folder with its nested subfolders, used for tree listings.
type FolderNode struct {
	FolderRecord
	Children []*FolderNode `json:"children"`
}

// MimeTypeCount is the number of files sharing a MIME type.
type MimeTypeCount struct {
	MimeType string `json:"mimeType"`
	Count    int    `json:"count"`
}

// Stats summarizes the whole catalog.
type Stats struct {
	TotalFiles   int             `json:"totalFiles"`
	TotalFolders int             `json:"totalFolders"`
	TotalSize    int64           `json:"totalSize"`
	MimeTypes    []MimeTypeCount `json:"mimeTypes"`
}

// Operation is one entry of the mutation audit log.
type Operation struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	Detail    string    `json:"detail"`
	At        time.Time `json:"at"`
}
