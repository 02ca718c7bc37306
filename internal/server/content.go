package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"drawer-go/internal/drawer"
)

// handleContent streams a file's bytes, honouring a single byte range.
// Once headers are sent a copy failure can only abort the connection.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := s.svc.OpenContent(id, r.Header.Get("Range"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer c.Body.Close()

	contentType := c.File.MimeType
	if contentType == "" {
		contentType = drawer.DefaultMimeType
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": c.File.DisplayName}))
	h.Set("Content-Length", strconv.FormatInt(c.Length(), 10))
	h.Set("Accept-Ranges", "bytes")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")

	status := http.StatusOK
	if c.Partial {
		h.Set("Content-Range", c.ContentRange())
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	if _, err := io.Copy(w, c.Body); err != nil {
		s.logger.Error("content stream aborted", "id", id, "path", c.File.FullPath, "error", err)
		panic(http.ErrAbortHandler)
	}
}
