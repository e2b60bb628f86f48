package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// EngineHandler handles scan engine CRUD and token rotation.
type EngineHandler struct {
	Repo      *repo.EngineRepo
	AuditRepo *repo.AuditRepo
}

// ListEngines returns paginated engines.
func (h *EngineHandler) ListEngines(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetEngine returns one engine.
func (h *EngineHandler) GetEngine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine")
	if !ok {
		return
	}
	e, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	if e == nil {
		JSONError(w, "engine not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEngine registers an engine. The response carries its API token.
func (h *EngineHandler) CreateEngine(w http.ResponseWriter, r *http.Request) {
	var in validate.EngineInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Engine(&in, false); err != nil {
		writeError(w, r, "engine", err)
		return
	}
	e := &models.Engine{}
	in.Apply(e)
	created, err := h.Repo.Create(r.Context(), e)
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "engine", created.ID, created.ScanEngine)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEngine handles PUT and PATCH.
func (h *EngineHandler) UpdateEngine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine")
	if !ok {
		return
	}
	var in validate.EngineInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.Engine(&in, isPartial(r)); err != nil {
		writeError(w, r, "engine", err)
		return
	}
	e, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	if e == nil {
		JSONError(w, "engine not found", http.StatusNotFound)
		return
	}
	in.Apply(e)
	updated, err := h.Repo.Update(r.Context(), e)
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	if updated == nil {
		JSONError(w, "engine not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "engine", id, updated.ScanEngine)
	writeJSON(w, http.StatusOK, updated)
}

// RotateToken issues a new API token; the old one stops working immediately.
func (h *EngineHandler) RotateToken(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine")
	if !ok {
		return
	}
	e, err := h.Repo.RotateToken(r.Context(), id)
	if err != nil {
		writeError(w, r, "engine", err)
		return
	}
	if e == nil {
		JSONError(w, "engine not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "rotate_token", "engine", id, e.ScanEngine)
	writeJSON(w, http.StatusOK, e)
}

// DeleteEngine removes an engine that no site uses.
func (h *EngineHandler) DeleteEngine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine")
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, "engine", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "engine", id, "")
	w.WriteHeader(http.StatusNoContent)
}
