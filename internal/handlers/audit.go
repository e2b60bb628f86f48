package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/repo"
)

// AuditHandler serves audit log endpoints.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListAudit returns recent audit log entries. Query: limit (default 50), offset (default 0).
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	entries, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "audit entry", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "audit entry", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: entries, Total: total, Limit: limit, Offset: offset})
}
