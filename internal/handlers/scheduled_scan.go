package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/crucial707/scantron/internal/metrics"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/crucial707/scantron/internal/validate"
)

// ScheduledScanHandler lets operators browse scheduled scans and pause or cancel them.
// Rows are only created by the scheduler.
type ScheduledScanHandler struct {
	Repo      *repo.ScheduledScanRepo
	AuditRepo *repo.AuditRepo
	Now       func() time.Time
}

func (h *ScheduledScanHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ListScheduledScans returns paginated scheduled scans. Query: scan_status, scan_engine, limit, offset.
func (h *ScheduledScanHandler) ListScheduledScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.ScheduledScanFilter{ScanStatus: q.Get("scan_status"), ScanEngine: q.Get("scan_engine")}
	if f.ScanStatus != "" && !slices.Contains(models.ScanStatuses, f.ScanStatus) {
		JSONValidationError(w, "validation failed", map[string]string{"scan_status": "unknown status"}, http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	list, err := h.Repo.List(r.Context(), f, limit, offset)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: list, Total: total, Limit: limit, Offset: offset})
}

// GetScheduledScan returns one scheduled scan.
func (h *ScheduledScanHandler) GetScheduledScan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scheduled scan")
	if !ok {
		return
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return
	}
	if s == nil {
		JSONError(w, "scheduled scan not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateScheduledScan applies the writable fields (scan_status, completed_time,
// result_file_base_name, scan_binary_process_id). Everything else in the body is ignored.
func (h *ScheduledScanHandler) UpdateScheduledScan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "scheduled scan")
	if !ok {
		return
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return
	}
	if s == nil {
		JSONError(w, "scheduled scan not found", http.StatusNotFound)
		return
	}
	updated, ok := applyScheduledScan(w, r, h.Repo, s, h.now())
	if !ok {
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "scheduled_scan", id, updated.ScanStatus)
	writeJSON(w, http.StatusOK, updated)
}

// applyScheduledScan decodes, validates and stores a progress update on s. It writes the
// error response itself and reports false on failure.
func applyScheduledScan(w http.ResponseWriter, r *http.Request, scans *repo.ScheduledScanRepo, s *models.ScheduledScan, now time.Time) (*models.ScheduledScan, bool) {
	var in validate.ScheduledScanInput
	if !decodeBody(w, r, &in) {
		return nil, false
	}
	if err := validate.ScheduledScan(&in); err != nil {
		writeError(w, r, "scheduled scan", err)
		return nil, false
	}
	previous := s.ScanStatus
	in.Apply(s, now)

	updated, err := scans.UpdateProgress(r.Context(), s)
	if err != nil {
		writeError(w, r, "scheduled scan", err)
		return nil, false
	}
	if updated == nil {
		JSONError(w, "scheduled scan not found", http.StatusNotFound)
		return nil, false
	}
	if updated.ScanStatus != previous {
		metrics.ScheduledScanUpdates.WithLabelValues(updated.ScanStatus).Inc()
	}
	return updated, true
}
