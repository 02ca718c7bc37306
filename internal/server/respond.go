package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"drawer-go/internal/drawer"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func ok(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind drawer.Kind) int {
	switch kind {
	case drawer.KindNotFound:
		return http.StatusNotFound
	case drawer.KindConflict:
		return http.StatusConflict
	case drawer.KindInvalidName, drawer.KindBadRequest:
		return http.StatusBadRequest
	case drawer.KindRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status and message of a classified error.
// Unclassified errors are logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := drawer.KindOf(err)
	status := statusFor(kind)
	msg := drawer.Message(err)

	var re *drawer.RangeError
	if errors.As(err, &re) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", re.Size))
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		var e *drawer.Error
		if !errors.As(err, &e) {
			msg = "internal error"
		}
	}
	writeJSON(w, status, envelope{Message: msg, Kind: string(kind)})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Message: message, Kind: string(drawer.KindBadRequest)})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}
