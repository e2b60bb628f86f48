package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
)

// engineVisibleStatuses are the statuses an engine must act on: new work, and operator
// requests to pause or cancel running work.
var engineVisibleStatuses = []string{models.ScanStatusPending, models.ScanStatusPause, models.ScanStatusCancel}

// EngineAPIHandler serves the endpoints scan engines poll. Routes must sit behind
// middleware.EngineAuth.
type EngineAPIHandler struct {
	Engines *repo.EngineRepo
	Scans   *repo.ScheduledScanRepo
	Now     func() time.Time
}

func (h *EngineAPIHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ListScheduledScans returns the calling engine's scans that need attention and records the check-in.
func (h *EngineAPIHandler) ListScheduledScans(w http.ResponseWriter, r *http.Request) {
	engine := middleware.EngineFromContext(r.Context())
	if engine == nil {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.Engines.Touch(r.Context(), engine.ID); err != nil {
		slog.Warn("engine check-in not recorded", "engine", engine.ScanEngine, "error", err)
	}

	list, err := h.Scans.ListForEngine(r.Context(), engine.ScanEngine, engineVisibleStatuses)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateScheduledScan lets an engine report progress on one of its own scans.
// Scans belonging to other engines answer 404.
func (h *EngineAPIHandler) UpdateScheduledScan(w http.ResponseWriter, r *http.Request) {
	engine := middleware.EngineFromContext(r.Context())
	if engine == nil {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := idParam(w, r, "scheduled scan")
	if !ok {
		return
	}
	s, err := h.Scans.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return
	}
	if s == nil || s.ScanEngine != engine.ScanEngine {
		JSONError(w, "scheduled scan not found", http.StatusNotFound)
		return
	}
	updated, ok := applyScheduledScan(w, r, h.Scans, s, h.now())
	if !ok {
		return
	}
	slog.Info("scheduled scan updated", "id", id, "engine", engine.ScanEngine, "scan_status", updated.ScanStatus)
	writeJSON(w, http.StatusOK, updated)
}
