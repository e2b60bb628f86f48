package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
)

var scheduledScanColumns = []string{
	"id", "site_name", "scan_engine", "start_datetime", "scan_binary", "scan_command",
	"targets", "excluded_targets", "scan_status", "completed_time", "result_file_base_name", "scan_binary_process_id",
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func asEngine(r *http.Request, e *models.Engine) *http.Request {
	var captured *http.Request
	lookup := engineLookupFunc(func(context.Context, string) (*models.Engine, error) { return e, nil })
	r.Header.Set("Authorization", "Token tok")
	middleware.EngineAuth(lookup)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = r
	})).ServeHTTP(httptest.NewRecorder(), r)
	return captured
}

type engineLookupFunc func(ctx context.Context, token string) (*models.Engine, error)

func (f engineLookupFunc) GetByToken(ctx context.Context, token string) (*models.Engine, error) {
	return f(ctx, token)
}

func TestScheduledScanHandler_ListScheduledScans_Filters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := fixedNow.Add(-time.Hour)
	mock.ExpectQuery(`FROM scheduled_scans WHERE scan_status = \$1 AND scan_engine = \$2`).
		WithArgs("pending", "engine1", 50, 0).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(1, "dmz", "engine1", start, "nmap", "-sS", "10.0.0.1", "", "pending", nil, "", nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM scheduled_scans WHERE scan_status = \$1 AND scan_engine = \$2`).
		WithArgs("pending", "engine1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	h := &ScheduledScanHandler{Repo: repo.NewScheduledScanRepo(db)}
	rr := httptest.NewRecorder()
	h.ListScheduledScans(rr, httptest.NewRequest("GET", "/v1/scheduled_scans?scan_status=pending&scan_engine=engine1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduledScanHandler_ListScheduledScans_UnknownStatus(t *testing.T) {
	h := &ScheduledScanHandler{}
	rr := httptest.NewRecorder()
	h.ListScheduledScans(rr, httptest.NewRequest("GET", "/v1/scheduled_scans?scan_status=done", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestScheduledScanHandler_UpdateScheduledScan_IgnoresReadOnlyFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := fixedNow.Add(-time.Hour)
	mock.ExpectQuery(`FROM scheduled_scans WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(7, "dmz", "engine1", start, "nmap", "-sS", "10.0.0.1", "", "started", nil, "", 99))
	// status "cancel" is not terminal, so completed_time stays empty
	mock.ExpectQuery(`UPDATE scheduled_scans`).
		WithArgs("cancel", nil, "", 99, 7).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(7, "dmz", "engine1", start, "nmap", "-sS", "10.0.0.1", "", "cancel", nil, "", 99))

	h := &ScheduledScanHandler{Repo: repo.NewScheduledScanRepo(db), Now: func() time.Time { return fixedNow }}
	body := []byte(`{"scan_status": "cancel", "targets": "8.8.8.8", "site_name": "other"}`)
	rr := httptest.NewRecorder()
	h.UpdateScheduledScan(rr, requestWithChiURLParams("PATCH", "/v1/scheduled_scans/7", body, map[string]string{"id": "7"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var out models.ScheduledScan
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Targets != "10.0.0.1" || out.SiteName != "dmz" {
		t.Errorf("read-only fields changed: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngineAPIHandler_ListScheduledScans(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := fixedNow.Add(-time.Minute)
	mock.ExpectExec(`UPDATE engines SET last_checkin = NOW\(\)`).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE scan_engine = \$1 AND scan_status = ANY\(\$2\)`).
		WithArgs("engine1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(1, "dmz", "engine1", start, "nmap", "-sS", "10.0.0.1", "", "pending", nil, "", nil))

	h := &EngineAPIHandler{Engines: repo.NewEngineRepo(db), Scans: repo.NewScheduledScanRepo(db)}
	req := asEngine(httptest.NewRequest("GET", "/v1/engine/scheduled_scans", nil), &models.Engine{ID: 3, ScanEngine: "engine1"})
	rr := httptest.NewRecorder()
	h.ListScheduledScans(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out []models.ScheduledScan
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ScanStatus != "pending" {
		t.Errorf("unexpected scans: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngineAPIHandler_UpdateScheduledScan_CompletedStampsTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := fixedNow.Add(-time.Hour)
	mock.ExpectQuery(`FROM scheduled_scans WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(7, "dmz", "engine1", start, "nmap", "-sS", "10.0.0.1", "", "started", nil, "", 99))
	mock.ExpectQuery(`UPDATE scheduled_scans`).
		WithArgs("completed", fixedNow, "dmz__engine1__20260501", 99, 7).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(7, "dmz", "engine1", start, "nmap", "-sS", "10.0.0.1", "", "completed", fixedNow, "dmz__engine1__20260501", 99))

	h := &EngineAPIHandler{Scans: repo.NewScheduledScanRepo(db), Now: func() time.Time { return fixedNow }}
	body := []byte(`{"scan_status": "completed", "result_file_base_name": "dmz__engine1__20260501"}`)
	req := asEngine(requestWithChiURLParams("PATCH", "/v1/engine/scheduled_scans/7", body, map[string]string{"id": "7"}),
		&models.Engine{ID: 3, ScanEngine: "engine1"})
	rr := httptest.NewRecorder()
	h.UpdateScheduledScan(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngineAPIHandler_UpdateScheduledScan_OtherEngine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := fixedNow.Add(-time.Hour)
	mock.ExpectQuery(`FROM scheduled_scans WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(scheduledScanColumns).
			AddRow(7, "dmz", "engine2", start, "nmap", "-sS", "10.0.0.1", "", "pending", nil, "", nil))

	h := &EngineAPIHandler{Scans: repo.NewScheduledScanRepo(db)}
	req := asEngine(requestWithChiURLParams("PATCH", "/v1/engine/scheduled_scans/7", []byte(`{"scan_status":"started"}`), map[string]string{"id": "7"}),
		&models.Engine{ID: 3, ScanEngine: "engine1"})
	rr := httptest.NewRecorder()
	h.UpdateScheduledScan(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
