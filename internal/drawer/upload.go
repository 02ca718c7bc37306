package drawer

import (
	"bytes"
	"io"

	"drawer-go/internal/formdata"
	"drawer-go/internal/model"
)

// DefaultMimeType is recorded when an upload declares no content type.
const DefaultMimeType = "application/octet-stream"

// Upload decodes a multipart/form-data body and stores its file part in the
// folder named by the folderPath field (root when absent).
func (s *Service) Upload(contentType string, body []byte) (model.FileRecord, error) {
	form, err := formdata.Parse(contentType, body)
	if err != nil {
		return model.FileRecord{}, &Error{Kind: KindBadRequest, Op: "Upload", Message: err.Error(), Err: err}
	}
	return s.AddFile(form.Fields["folderPath"], form.FileName, form.ContentType, bytes.NewReader(form.Data))
}

// AddFile stores everything read from r as a new file in folderPath.
//
// The bytes are spooled to the vault's incoming area without holding the
// mutation lock. The record is created only after the bytes are in place;
// any failure after the spool write removes the bytes again.
func (s *Service) AddFile(folderPath, name, mimeType string, r io.Reader) (model.FileRecord, error) {
	const op = "AddFile"

	folder := NormalizePath(folderPath)
	if err := s.names.ValidateFolderPath(folder); err != nil {
		return model.FileRecord{}, WithOp(op, err)
	}
	if err := s.names.ValidateFileName(name); err != nil {
		return model.FileRecord{}, WithOp(op, err)
	}
	if s.names.Denied(name) {
		return model.FileRecord{}, Errorf(KindBadRequest, op, "uploads named %q are not accepted", name)
	}
	// Fail fast before spooling; the plan below checks again under the lock.
	if !s.catalog.FolderExists(folder) {
		return model.FileRecord{}, Errorf(KindNotFound, op, "folder %s not found", folder)
	}
	if s.catalog.FileExistsInFolder(folder, name) {
		return model.FileRecord{}, Errorf(KindConflict, op, "a file named %q already exists in %s", name, folder)
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	storage := StorageName(name, s.idgen.New())
	incoming := s.vault.IncomingLocation(storage)
	size, err := s.vault.Write(incoming, r)
	if err != nil {
		return model.FileRecord{}, err
	}

	rec, err := s.placeUpload(model.NewFile{
		StorageName: storage,
		DisplayName: name,
		FolderPath:  folder,
		Size:        size,
		MimeType:    mimeType,
	}, incoming)
	if err != nil {
		return model.FileRecord{}, err
	}

	s.logger.Info("file uploaded", "path", rec.FullPath, "size", rec.Size, "storage", rec.StorageName)
	return rec, nil
}

// placeUpload moves spooled bytes into their folder and records them.
func (s *Service) placeUpload(nf model.NewFile, incoming string) (model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	discard := func(loc string) {
		if err := s.vault.Remove(loc); err != nil {
			s.logger.Warn("upload bytes not removed", "location", loc, "error", err)
		}
	}

	plan, err := s.catalog.PlanCreateFile(nf)
	if err != nil {
		discard(incoming)
		return model.FileRecord{}, err
	}
	if err := s.vault.EnsureDirectory(nf.FolderPath); err != nil {
		discard(incoming)
		return model.FileRecord{}, err
	}
	final := s.vault.Location(nf.FolderPath, nf.StorageName)
	if err := s.vault.Move(incoming, final); err != nil {
		discard(incoming)
		return model.FileRecord{}, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		discard(final)
		return model.FileRecord{}, err
	}
	return plan.File, nil
}
