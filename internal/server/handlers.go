package server

import (
	"errors"
	"io"
	"net/http"

	"drawer-go/internal/drawer"
	"drawer-go/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok(w, "ok", nil)
}

// handleListFiles lists every file, or filters by ?q= search or ?type= MIME type.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	var files []model.FileRecord
	switch q := r.URL.Query(); {
	case q.Has("q"):
		files = s.svc.Search(q.Get("q"))
	case q.Get("type") != "":
		files = s.svc.FilesByType(q.Get("type"))
	default:
		files = s.svc.AllFiles()
	}
	ok(w, "files listed", files)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ok(w, "stats", s.svc.Stats())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, envelope{
				Message: "upload exceeds the maximum size",
				Kind:    string(drawer.KindBadRequest),
			})
			return
		}
		badRequest(w, "failed to read request body")
		return
	}

	rec, err := s.svc.Upload(r.Header.Get("Content-Type"), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "File uploaded successfully", rec)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.DeleteFile(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "File deleted successfully", rec)
}

type renameRequest struct {
	NewName string `json:"newName"`
}

type moveRequest struct {
	Path          string `json:"path,omitempty"`
	NewParentPath string `json:"newParentPath"`
}

func (s *Server) handleRenameFile(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := s.svc.RenameFile(r.PathValue("id"), req.NewName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "File renamed successfully", rec)
}

func (s *Server) handleMoveFile(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := s.svc.MoveFile(r.PathValue("id"), req.NewParentPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "File moved successfully", rec)
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	ok(w, "folders listed", s.svc.AllFolders())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	ok(w, "folder tree", s.svc.Tree())
}

// childrenResponse is the body of a folder listing.
type childrenResponse struct {
	Path    string               `json:"path"`
	Files   []model.FileRecord   `json:"files"`
	Folders []model.FolderRecord `json:"folders"`
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := drawer.NormalizePath(q.Get("path"))
	files, folders, err := s.svc.ListChildren(path, drawer.ParseFileOrder(q.Get("order")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "folder listed", childrenResponse{Path: path, Files: files, Folders: folders})
}

type createFolderRequest struct {
	Name       string `json:"name"`
	ParentPath string `json:"parentPath"`
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := s.svc.CreateFolder(req.Name, req.ParentPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Folder created successfully", Data: rec})
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := s.svc.RenameFolder(r.PathValue("path"), req.NewName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "Folder renamed successfully", rec)
}

func (s *Server) handleMoveFolder(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		badRequest(w, "path is required")
		return
	}
	rec, err := s.svc.MoveFolder(req.Path, req.NewParentPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "Folder moved successfully", rec)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.DeleteFolder(r.PathValue("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, "Folder deleted successfully", map[string]int{
		"folders": len(removed.Folders),
		"files":   len(removed.Files),
	})
}
