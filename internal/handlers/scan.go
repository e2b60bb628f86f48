package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// ScanHandler handles scan definition CRUD. Changes reach the scheduler on its next reload.
type ScanHandler struct {
	Repo      *repo.ScanRepo
	AuditRepo *repo.AuditRepo
}

// ListScans returns paginated scans (query: limit, offset).
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "scan", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "scan", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetScan returns one scan by id.
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scan")
	if !ok {
		return
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scan", err)
		return
	}
	if s == nil {
		JSONError(w, "scan not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateScan creates a scan.
// Body: {"site": 1, "scan_name": "nightly", "start_time": "2026-01-01T02:00:00Z", "recurrences": "0 2 * * *"}.
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	var in validate.ScanInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Scan(&in, false); err != nil {
		writeError(w, r, "scan", err)
		return
	}
	s := &models.Scan{EnableScan: true}
	in.Apply(s)
	created, err := h.Repo.Create(r.Context(), s)
	if err != nil {
		writeError(w, r, "scan", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "scan", created.ID, created.ScanName)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateScan handles PUT and PATCH.
func (h *ScanHandler) UpdateScan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scan")
	if !ok {
		return
	}
	var in validate.ScanInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Scan(&in, isPartial(r)); err != nil {
		writeError(w, r, "scan", err)
		return
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scan", err)
		return
	}
	if s == nil {
		JSONError(w, "scan not found", http.StatusNotFound)
		return
	}
	in.Apply(s)
	updated, err := h.Repo.Update(r.Context(), s)
	if err != nil {
		writeError(w, r, "scan", err)
		return
	}
	if updated == nil {
		JSONError(w, "scan not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "scan", id, updated.ScanName)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteScan removes a scan by id.
func (h *ScanHandler) DeleteScan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scan")
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, "scan", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "scan", id, "")
	w.WriteHeader(http.StatusNoContent)
}
