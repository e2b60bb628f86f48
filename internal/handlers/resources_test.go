package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/scantron/internal/repo"
)

var engineColumns = []string{"id", "scan_engine", "description", "api_token", "last_checkin", "created", "last_updated"}

func TestEngineHandler_CreateEngine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO engines`).
		WithArgs("engine1", "rack 4", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(engineColumns).AddRow(1, "engine1", "rack 4", "9b1c", nil, now, now))

	h := &EngineHandler{Repo: repo.NewEngineRepo(db)}
	rr := httptest.NewRecorder()
	h.CreateEngine(rr, httptest.NewRequest("POST", "/v1/engines", bytes.NewReader([]byte(`{"scan_engine":"engine1","description":"rack 4"}`))))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var out struct {
		APIToken    string      `json:"api_token"`
		LastCheckin interface{} `json:"last_checkin"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.APIToken != "9b1c" || out.LastCheckin != nil {
		t.Errorf("unexpected engine: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestEngineHandler_CreateEngine_InvalidName(t *testing.T) {
	h := &EngineHandler{}
	rr := httptest.NewRecorder()
	h.CreateEngine(rr, httptest.NewRequest("POST", "/v1/engines", bytes.NewReader([]byte(`{"scan_engine":"engine 1"}`))))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestEngineHandler_RotateToken_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE engines`).
		WithArgs(sqlmock.AnyArg(), 9).
		WillReturnRows(sqlmock.NewRows(engineColumns))

	h := &EngineHandler{Repo: repo.NewEngineRepo(db)}
	rr := httptest.NewRecorder()
	h.RotateToken(rr, requestWithChiURLParams("POST", "/v1/engines/9/rotate_token", nil, map[string]string{"id": "9"}))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestEnginePoolHandler_CreateEnginePool_MissingName(t *testing.T) {
	h := &EnginePoolHandler{}
	rr := httptest.NewRecorder()
	h.CreateEnginePool(rr, httptest.NewRequest("POST", "/v1/engine_pools", bytes.NewReader([]byte(`{"scan_engines":[1,1,2]}`))))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestConfigurationHandler_UpdateConfiguration(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "enable_scan_retention", "scan_retention_in_days", "created", "last_updated"}
	mock.ExpectQuery(`FROM configuration WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, true, 60, now, now))
	mock.ExpectQuery(`UPDATE configuration`).
		WithArgs(true, 30, 1).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, true, 30, now, now))

	h := &ConfigurationHandler{Repo: repo.NewConfigurationRepo(db)}
	rr := httptest.NewRecorder()
	h.UpdateConfiguration(rr, requestWithChiURLParams("PATCH", "/v1/configuration/1", []byte(`{"scan_retention_in_days":30}`), map[string]string{"id": "1"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestConfigurationHandler_UpdateConfiguration_OutOfRange(t *testing.T) {
	h := &ConfigurationHandler{}
	rr := httptest.NewRecorder()
	h.UpdateConfiguration(rr, requestWithChiURLParams("PUT", "/v1/configuration/1", []byte(`{"scan_retention_in_days":0}`), map[string]string{"id": "1"}))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestScanHandler_CreateScan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 6, 1, 2, 0, 0, 0, time.UTC)
	cols := []string{"id", "site_id", "scan_name", "enable_scan", "start_time", "recurrences", "created", "last_updated"}
	mock.ExpectQuery(`INSERT INTO scans`).
		WithArgs(1, "nightly", true, start, "0 2 * * *").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 1, "nightly", true, start, "0 2 * * *", start, start))

	h := &ScanHandler{Repo: repo.NewScanRepo(db)}
	body := []byte(`{"site":1,"scan_name":"nightly","start_time":"2026-06-01T04:00:00+02:00","recurrences":" 0 2 * * * "}`)
	rr := httptest.NewRecorder()
	h.CreateScan(rr, httptest.NewRequest("POST", "/v1/scans", bytes.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScanHandler_CreateScan_BadRecurrence(t *testing.T) {
	h := &ScanHandler{}
	body := []byte(`{"site":1,"scan_name":"nightly","start_time":"2026-06-01T02:00:00Z","recurrences":"every night"}`)
	rr := httptest.NewRecorder()
	h.CreateScan(rr, httptest.NewRequest("POST", "/v1/scans", bytes.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.Fields["recurrences"] == "" {
		t.Errorf("expected recurrences field error, got %v", out.Fields)
	}
}

func TestGloballyExcludedTargetHandler_Create_Invalid(t *testing.T) {
	h := &GloballyExcludedTargetHandler{}
	rr := httptest.NewRecorder()
	h.CreateGloballyExcludedTarget(rr, httptest.NewRequest("POST", "/v1/globally_excluded_targets",
		bytes.NewReader([]byte(`{"globally_excluded_targets":"10.0.0.1, nope"}`))))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.Error != "Invalid globally excluded targets provided: nope" {
		t.Errorf("error: got %q", out.Error)
	}
}

func TestUserHandler_DeleteUser_Self(t *testing.T) {
	h := &UserHandler{}
	req := asUser(requestWithChiURLParams("DELETE", "/v1/users/1", nil, map[string]string{"id": "1"}), 1, "admin")
	rr := httptest.NewRecorder()
	h.DeleteUser(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestUserHandler_UpdateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("admin", nil, 2).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "bob", "$2a$x", "admin", time.Now()))

	h := &UserHandler{Repo: repo.NewUserRepo(db)}
	rr := httptest.NewRecorder()
	h.UpdateUser(rr, requestWithChiURLParams("PUT", "/v1/users/2", []byte(`{"role":"admin"}`), map[string]string{"id": "2"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
