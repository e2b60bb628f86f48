package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// ScanCommandHandler handles scan command CRUD.
type ScanCommandHandler struct {
	Repo      *repo.ScanCommandRepo
	AuditRepo *repo.AuditRepo
}

// ListScanCommands returns paginated scan commands.
func (h *ScanCommandHandler) ListScanCommands(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetScanCommand returns one scan command.
func (h *ScanCommandHandler) GetScanCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scan command")
	if !ok {
		return
	}
	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	if c == nil {
		JSONError(w, "scan command not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateScanCommand creates a scan command.
// Body: {"scan_binary": "nmap", "scan_command_name": "quick", "scan_command": "-sS --top-ports 100"}.
func (h *ScanCommandHandler) CreateScanCommand(w http.ResponseWriter, r *http.Request) {
	var in validate.ScanCommandInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.ScanCommand(&in, false); err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	c := &models.ScanCommand{}
	in.Apply(c)
	created, err := h.Repo.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "scan_command", created.ID, created.ScanCommandName)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateScanCommand handles PUT and PATCH.
func (h *ScanCommandHandler) UpdateScanCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scan command")
	if !ok {
		return
	}
	var in validate.ScanCommandInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := validate.ScanCommand(&in, isPartial(r)); err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	if c == nil {
		JSONError(w, "scan command not found", http.StatusNotFound)
		return
	}
	in.Apply(c)
	updated, err := h.Repo.Update(r.Context(), c)
	if err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	if updated == nil {
		JSONError(w, "scan command not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "scan_command", id, updated.ScanCommandName)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteScanCommand removes a scan command that no site uses.
func (h *ScanCommandHandler) DeleteScanCommand(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scan command")
	if !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, "scan command", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "scan_command", id, "")
	w.WriteHeader(http.StatusNoContent)
}
