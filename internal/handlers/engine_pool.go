package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// EnginePoolHandler handles engine pool CRUD.
type EnginePoolHandler struct {
	Repo      *repo.EnginePoolRepo
	AuditRepo *repo.AuditRepo
}

// ListEnginePools returns paginated pools.
func (h *EnginePoolHandler) ListEnginePools(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetEnginePool returns one pool.
func (h *EnginePoolHandler) GetEnginePool(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine pool")
	if !ok {
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	if p == nil {
		JSONError(w, "engine pool not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateEnginePool creates a pool. Body: {"engine_pool_name": "east", "scan_engines": [1, 2]}.
func (h *EnginePoolHandler) CreateEnginePool(w http.ResponseWriter, r *http.Request) {
	var in validate.EnginePoolInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.EnginePool(&in, false); err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	p := &models.EnginePool{ScanEngines: []int{}}
	in.Apply(p)
	created, err := h.Repo.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "engine_pool", created.ID, created.EnginePoolName)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEnginePool handles PUT and PATCH. scan_engines, when sent, replaces the member list.
func (h *EnginePoolHandler) UpdateEnginePool(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine pool")
	if !ok {
		return
	}
	var in validate.EnginePoolInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.EnginePool(&in, isPartial(r)); err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	p, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	if p == nil {
		JSONError(w, "engine pool not found", http.StatusNotFound)
		return
	}
	in.Apply(p)
	updated, err := h.Repo.Update(r.Context(), p)
	if err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	if updated == nil {
		JSONError(w, "engine pool not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "engine_pool", id, updated.EnginePoolName)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteEnginePool removes a pool that no site uses.
func (h *EnginePoolHandler) DeleteEnginePool(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "engine pool")
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, "engine pool", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "engine_pool", id, "")
	w.WriteHeader(http.StatusNoContent)
}
