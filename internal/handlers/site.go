package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// ==========================
// SiteHandler
// ==========================
type SiteHandler struct {
	Repo      *repo.SiteRepo
	AuditRepo *repo.AuditRepo
}

// ==========================
// List Sites
// ==========================
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "site", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "site", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// ==========================
// Get Site
// ==========================
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "site")
	if !ok {
		return
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "site", err)
		return
	}
	if s == nil {
		JSONError(w, "site not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ==========================
// Create Site (targets and email lists are normalized before storing)
// ==========================
func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var in validate.SiteInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Site(&in, false); err != nil {
		writeError(w, r, "site", err)
		return
	}
	s := &models.Site{}
	in.Apply(s)
	if err := validate.SiteRecord(s); err != nil {
		writeError(w, r, "site", err)
		return
	}

	created, err := h.Repo.Create(r.Context(), s)
	if err != nil {
		writeError(w, r, "site", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "site", created.ID, created.SiteName)
	writeJSON(w, http.StatusCreated, created)
}

// ==========================
// Update Site (PUT requires site_name, targets, scan_command; PATCH validates only what is sent)
// ==========================
func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "site")
	if !ok {
		return
	}
	var in validate.SiteInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Site(&in, isPartial(r)); err != nil {
		writeError(w, r, "site", err)
		return
	}

	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "site", err)
		return
	}
	if s == nil {
		JSONError(w, "site not found", http.StatusNotFound)
		return
	}
	in.Apply(s)
	if err := validate.SiteRecord(s); err != nil {
		writeError(w, r, "site", err)
		return
	}

	updated, err := h.Repo.Update(r.Context(), s)
	if err != nil {
		writeError(w, r, "site", err)
		return
	}
	if updated == nil {
		JSONError(w, "site not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "site", id, updated.SiteName)
	writeJSON(w, http.StatusOK, updated)
}

// ==========================
// Delete Site (its scans go with it)
// ==========================
func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "site")
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, "site", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "site", id, "")
	w.WriteHeader(http.StatusNoContent)
}
