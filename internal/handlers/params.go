package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/go-chi/chi/v5"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// listResponse is the envelope for every paginated list.
type listResponse struct {
	Items  interface{} `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// pagination reads limit (default 50, max 200) and offset (default 0). Invalid values fall back to the defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxLimit {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// idParam parses the {id} URL parameter and answers 400 itself when it is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request, resource string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		JSONError(w, "invalid "+resource+" id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeBody decodes the JSON request body into v and answers 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// isPartial reports whether the request is a PATCH, which only validates the keys sent.
func isPartial(r *http.Request) bool {
	return r.Method == http.MethodPatch
}

// recordAudit logs a change by the authenticated user. Failures are logged, not returned.
func recordAudit(ctx context.Context, audit *repo.AuditRepo, action, resourceType string, resourceID int, details string) {
	if audit == nil {
		return
	}
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return
	}
	if err := audit.Log(ctx, userID, action, resourceType, resourceID, details); err != nil {
		slog.Warn("audit log failed", "action", action, "resource_type", resourceType, "resource_id", resourceID, "error", err)
	}
}
