package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/files", s.handleListFiles)
	mux.HandleFunc("GET /api/files/stats", s.handleStats)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/files/{id}", s.handleContent)
	mux.HandleFunc("GET /api/serve/{id}", s.handleContent)
	mux.HandleFunc("DELETE /api/files/{id}", s.handleDeleteFile)
	mux.HandleFunc("POST /api/files/{id}/rename", s.handleRenameFile)
	mux.HandleFunc("POST /api/files/{id}/move", s.handleMoveFile)

	mux.HandleFunc("GET /api/folders", s.handleListFolders)
	mux.HandleFunc("GET /api/folders/tree", s.handleTree)
	mux.HandleFunc("GET /api/folders/children", s.handleChildren)
	mux.HandleFunc("POST /api/folders", s.handleCreateFolder)
	mux.HandleFunc("POST /api/folders/move", s.handleMoveFolder)
	mux.HandleFunc("PUT /api/folders/{path...}", s.handleRenameFolder)
	mux.HandleFunc("DELETE /api/folders/{path...}", s.handleDeleteFolder)

	return mux
}
