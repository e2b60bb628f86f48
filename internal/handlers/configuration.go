package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// ConfigurationHandler serves the console configuration. Rows are created by migrations only.
type ConfigurationHandler struct {
	Repo      *repo.ConfigurationRepo
	AuditRepo *repo.AuditRepo
}

// ListConfigurations returns paginated configuration rows.
func (h *ConfigurationHandler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "configuration", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetConfiguration returns one configuration row.
func (h *ConfigurationHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "configuration")
	if !ok {
		return
	}
	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "configuration", err)
		return
	}
	if c == nil {
		JSONError(w, "configuration not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateConfiguration handles PUT and PATCH. Body: {"enable_scan_retention": true, "scan_retention_in_days": 60}.
func (h *ConfigurationHandler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "configuration")
	if !ok {
		return
	}
	var in validate.ConfigurationInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Configuration(&in); err != nil {
		writeError(w, r, "configuration", err)
		return
	}

	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "configuration", err)
		return
	}
	if c == nil {
		JSONError(w, "configuration not found", http.StatusNotFound)
		return
	}
	in.Apply(c)
	updated, err := h.Repo.Update(r.Context(), c)
	if err != nil {
		writeError(w, r, "configuration", err)
		return
	}
	if updated == nil {
		JSONError(w, "configuration not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "configuration", id, "")
	writeJSON(w, http.StatusOK, updated)
}
