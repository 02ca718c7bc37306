package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"drawer-go/internal/catalog"
	"drawer-go/internal/drawer"
	"drawer-go/internal/model"
)

// JSONStore persists the catalog as a single JSON document:
//
//	{"files": [...], "folders": [...]}
//
// The document is rewritten whole on every change using a temp file and rename.
type JSONStore struct {
	mu   sync.Mutex
	path string
	doc  document
}

type document struct {
	Files   []model.FileRecord   `json:"files"`
	Folders []model.FolderRecord `json:"folders"`
}

// storedFile accepts both the current field names and the legacy ones written
// before folders existed.
type storedFile struct {
	ID          json.RawMessage `json:"id"`
	StorageName string          `json:"storageName"`
	DisplayName string          `json:"displayName"`
	FolderPath  string          `json:"folderPath"`
	FullPath    string          `json:"fullPath"`
	Size        int64           `json:"size"`
	MimeType    string          `json:"mimeType"`
	CreatedAt   *time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`

	Filename     string     `json:"filename"`
	OriginalName string     `json:"originalName"`
	Name         string     `json:"name"`
	ParentPath   string     `json:"parentPath"`
	UploadedAt   *time.Time `json:"uploadedAt"`
}

type storedFolder struct {
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	Path       string          `json:"path"`
	ParentPath string          `json:"parentPath"`
	CreatedAt  *time.Time      `json:"createdAt"`
	UpdatedAt  *time.Time      `json:"updatedAt"`
}

type storedDocument struct {
	Files   []storedFile    `json:"files"`
	Folders *[]storedFolder `json:"folders"`
}

// NewJSONStore returns a store backed by the document at path.
// The file is created on first write.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

// Load reads the document, upgrading a legacy one in place.
func (s *JSONStore) Load() (*catalog.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.doc = document{Files: []model.FileRecord{}, Folders: []model.FolderRecord{}}
			return &catalog.Snapshot{}, nil
		}
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	doc, upgraded, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", s.path, err)
	}
	if upgraded {
		if err := writeJSONAtomic(s.path, doc); err != nil {
			return nil, fmt.Errorf("upgrading catalog file: %w", err)
		}
	}
	s.doc = doc

	return &catalog.Snapshot{
		Files:   append([]model.FileRecord(nil), doc.Files...),
		Folders: append([]model.FolderRecord(nil), doc.Folders...),
	}, nil
}

// decodeDocument parses either the current layout or a legacy one. upgraded
// reports whether the result differs from what was read and must be rewritten.
func decodeDocument(data []byte) (document, bool, error) {
	var raw storedDocument
	upgraded := false

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return document{Files: []model.FileRecord{}, Folders: []model.FolderRecord{}}, true, nil
	case trimmed[0] == '[':
		// A bare array of file records predates folders.
		if err := json.Unmarshal(trimmed, &raw.Files); err != nil {
			return document{}, false, err
		}
		upgraded = true
	default:
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return document{}, false, err
		}
		if raw.Folders == nil {
			upgraded = true
		}
	}

	doc := document{Files: make([]model.FileRecord, 0, len(raw.Files)), Folders: []model.FolderRecord{}}
	for _, sf := range raw.Files {
		f, changed := sf.upgrade()
		upgraded = upgraded || changed
		doc.Files = append(doc.Files, f)
	}
	if raw.Folders != nil {
		for _, sf := range *raw.Folders {
			f, changed := sf.upgrade()
			upgraded = upgraded || changed
			doc.Folders = append(doc.Folders, f)
		}
	}
	return doc, upgraded, nil
}

// rawID turns a JSON string or number into an ID string.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

func isStringID(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 2 && raw[0] == '"'
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstTime(values ...*time.Time) time.Time {
	for _, v := range values {
		if v != nil && !v.IsZero() {
			return *v
		}
	}
	return time.Time{}
}

func (sf storedFile) upgrade() (model.FileRecord, bool) {
	f := model.FileRecord{
		ID:          rawID(sf.ID),
		StorageName: firstNonEmpty(sf.StorageName, sf.Filename),
		DisplayName: firstNonEmpty(sf.DisplayName, sf.OriginalName, sf.Name, sf.Filename),
		FolderPath:  drawer.NormalizePath(firstNonEmpty(sf.FolderPath, sf.ParentPath)),
		Size:        sf.Size,
		MimeType:    sf.MimeType,
		CreatedAt:   firstTime(sf.UploadedAt, sf.CreatedAt),
	}
	f.UpdatedAt = firstTime(sf.UpdatedAt)
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = f.CreatedAt
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.StorageName == "" {
		f.StorageName = f.ID
	}
	if f.MimeType == "" {
		f.MimeType = drawer.DefaultMimeType
	}
	f.FullPath = drawer.JoinPath(f.FolderPath, f.DisplayName)

	changed := !isStringID(sf.ID) || sf.StorageName == "" || sf.DisplayName == "" || sf.MimeType == "" ||
		sf.FolderPath != f.FolderPath || sf.FullPath != f.FullPath || sf.CreatedAt == nil ||
		sf.Filename != "" || sf.OriginalName != "" || sf.Name != "" || sf.ParentPath != "" || sf.UploadedAt != nil
	return f, changed
}

func (sf storedFolder) upgrade() (model.FolderRecord, bool) {
	f := model.FolderRecord{
		ID:        rawID(sf.ID),
		Path:      drawer.NormalizePath(sf.Path),
		CreatedAt: firstTime(sf.CreatedAt),
		UpdatedAt: firstTime(sf.UpdatedAt, sf.CreatedAt),
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.Name = drawer.BaseName(f.Path)
	f.ParentPath = drawer.ParentPath(f.Path)

	changed := !isStringID(sf.ID) || sf.Name != f.Name || sf.ParentPath != f.ParentPath || sf.Path != f.Path
	return f, changed
}

// Apply rewrites the document with the change applied. On failure the
// previous document is kept both on disk and in memory.
func (s *JSONStore) Apply(change *drawer.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := document{
		Files:   make([]model.FileRecord, 0, len(s.doc.Files)+len(change.PutFiles)),
		Folders: make([]model.FolderRecord, 0, len(s.doc.Folders)+len(change.PutFolders)),
	}

	dropFiles := toSet(change.DeleteFiles)
	putFiles := make(map[string]model.FileRecord, len(change.PutFiles))
	for _, f := range change.PutFiles {
		putFiles[f.ID] = f
	}
	for _, f := range s.doc.Files {
		if dropFiles[f.ID] {
			continue
		}
		if p, ok := putFiles[f.ID]; ok {
			f = p
			delete(putFiles, f.ID)
		}
		next.Files = append(next.Files, f)
	}
	for _, f := range change.PutFiles {
		if _, ok := putFiles[f.ID]; ok {
			next.Files = append(next.Files, f)
		}
	}

	dropFolders := toSet(change.DeleteFolders)
	putFolders := make(map[string]model.FolderRecord, len(change.PutFolders))
	for _, f := range change.PutFolders {
		putFolders[f.ID] = f
	}
	for _, f := range s.doc.Folders {
		if dropFolders[f.ID] {
			continue
		}
		if p, ok := putFolders[f.ID]; ok {
			f = p
			delete(putFolders, f.ID)
		}
		next.Folders = append(next.Folders, f)
	}
	for _, f := range change.PutFolders {
		if _, ok := putFolders[f.ID]; ok {
			next.Folders = append(next.Folders, f)
		}
	}

	if err := writeJSONAtomic(s.path, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// Path returns the document path.
func (s *JSONStore) Path() string {
	return s.path
}

// Close is a no-op; every change is already on disk.
func (s *JSONStore) Close() error {
	return nil
}

// writeJSONAtomic writes v as indented JSON to path using a temp file and rename.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync catalog: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that JSONStore implements catalog.Persister interface
var _ catalog.Persister = (*JSONStore)(nil)
