package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

const excludedResource = "globally excluded target"

// GloballyExcludedTargetHandler handles CRUD for targets that are never scanned.
type GloballyExcludedTargetHandler struct {
	Repo      *repo.GloballyExcludedTargetRepo
	AuditRepo *repo.AuditRepo
}

// ListGloballyExcludedTargets returns paginated rows.
func (h *GloballyExcludedTargetHandler) ListGloballyExcludedTargets(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetGloballyExcludedTarget returns one row.
func (h *GloballyExcludedTargetHandler) GetGloballyExcludedTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, excludedResource)
	if !ok {
		return
	}
	g, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	if g == nil {
		JSONError(w, excludedResource+" not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// CreateGloballyExcludedTarget stores the targets in nmap form.
// Body: {"globally_excluded_targets": "10.0.0.1, 10.0.1.0/24", "note": "..."}.
func (h *GloballyExcludedTargetHandler) CreateGloballyExcludedTarget(w http.ResponseWriter, r *http.Request) {
	var in validate.GloballyExcludedTargetInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.GloballyExcludedTarget(&in, false); err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	g := &models.GloballyExcludedTarget{}
	if in.GloballyExcludedTargets != nil {
		g.GloballyExcludedTargets = *in.GloballyExcludedTargets
	}
	if in.Note != nil {
		g.Note = *in.Note
	}
	created, err := h.Repo.Create(r.Context(), g)
	if err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "globally_excluded_target", created.ID, created.GloballyExcludedTargets)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateGloballyExcludedTarget handles PUT and PATCH.
func (h *GloballyExcludedTargetHandler) UpdateGloballyExcludedTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, excludedResource)
	if !ok {
		return
	}
	var in validate.GloballyExcludedTargetInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.GloballyExcludedTarget(&in, isPartial(r)); err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	g, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	if g == nil {
		JSONError(w, excludedResource+" not found", http.StatusNotFound)
		return
	}
	if in.GloballyExcludedTargets != nil {
		g.GloballyExcludedTargets = *in.GloballyExcludedTargets
	}
	if in.Note != nil {
		g.Note = *in.Note
	}
	updated, err := h.Repo.Update(r.Context(), g)
	if err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	if updated == nil {
		JSONError(w, excludedResource+" not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "globally_excluded_target", id, updated.GloballyExcludedTargets)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteGloballyExcludedTarget removes a row.
func (h *GloballyExcludedTargetHandler) DeleteGloballyExcludedTarget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, excludedResource)
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, excludedResource, err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "globally_excluded_target", id, "")
	w.WriteHeader(http.StatusNoContent)
}
