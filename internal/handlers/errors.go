package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps validation and repository errors to responses. resource names the
// record in 404/409 messages ("site", "engine", ...).
func writeError(w http.ResponseWriter, r *http.Request, resource string, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		JSONValidationError(w, verr.Message, verr.Fields, http.StatusBadRequest)
	case errors.Is(err, repo.ErrNotFound):
		JSONError(w, resource+" not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrConflict):
		JSONError(w, resource+" already exists", http.StatusConflict)
	case errors.Is(err, repo.ErrReference):
		JSONError(w, "referenced record does not exist", http.StatusBadRequest)
	case errors.Is(err, repo.ErrInUse):
		JSONError(w, resource+" is still in use", http.StatusConflict)
	default:
		slog.Error("request failed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}
