package scheduler

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/scantron/internal/models"
)

var (
	siteColumns = []string{"id", "site_name", "description", "targets", "excluded_targets", "scan_command_id",
		"scan_engine_id", "scan_engine_pool_id", "email_scan_alerts", "email_alert_addresses",
		"email_scan_diff", "email_scan_diff_addresses", "created", "last_updated"}
	scanCommandColumns = []string{"id", "scan_binary", "scan_command_name", "scan_command", "created", "last_updated"}
	engineColumns      = []string{"id", "scan_engine", "description", "api_token", "last_checkin", "created", "last_updated"}
	poolColumns        = []string{"id", "engine_pool_name", "scan_engines", "created", "last_updated"}
	excludedColumns    = []string{"id", "globally_excluded_targets", "note", "created", "last_updated"}
	scanColumns        = []string{"id", "site_id", "scan_name", "enable_scan", "start_time", "recurrences", "created", "last_updated"}
	configColumns      = []string{"id", "enable_scan_retention", "scan_retention_in_days", "created", "last_updated"}
)

var ts = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSplitTargets(t *testing.T) {
	tests := []struct {
		name string
		list []string
		n    int
		want [][]string
	}{
		{"single engine", []string{"a", "b", "c"}, 1, [][]string{{"a", "b", "c"}}},
		{"even", []string{"a", "b", "c", "d"}, 2, [][]string{{"a", "b"}, {"c", "d"}}},
		{"remainder goes first", []string{"a", "b", "c", "d", "e"}, 3, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
		{"more engines than targets", []string{"a", "b"}, 3, [][]string{{"a"}, {"b"}, {}}},
		{"no engines", []string{"a"}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTargets(tt.list, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d chunks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if len(got[i]) == 0 && len(tt.want[i]) == 0 {
					continue
				}
				if !reflect.DeepEqual(got[i], tt.want[i]) {
					t.Errorf("chunk %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScheduleFor_Once(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	sched, err := ScheduleFor(models.Scan{StartTime: at})
	if err != nil {
		t.Fatalf("ScheduleFor: %v", err)
	}
	if got := sched.Next(at.Add(-time.Hour)); !got.Equal(at) {
		t.Errorf("before start: got %v, want %v", got, at)
	}
	if got := sched.Next(at); !got.IsZero() {
		t.Errorf("at start: got %v, want zero", got)
	}
	if got := sched.Next(at.Add(time.Minute)); !got.IsZero() {
		t.Errorf("after start: got %v, want zero", got)
	}
}

func TestScheduleFor_RecurringStartsAtStartTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	sched, err := ScheduleFor(models.Scan{StartTime: start, Recurrences: "0 * * * *"})
	if err != nil {
		t.Fatalf("ScheduleFor: %v", err)
	}
	if got, want := sched.Next(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)), time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("before start: got %v, want %v", got, want)
	}
	if got, want := sched.Next(time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)), time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("after start: got %v, want %v", got, want)
	}

	onTheHour := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sched, _ = ScheduleFor(models.Scan{StartTime: onTheHour, Recurrences: "@hourly"})
	if got := sched.Next(onTheHour.Add(-time.Hour)); !got.Equal(onTheHour) {
		t.Errorf("start on an activation: got %v, want %v", got, onTheHour)
	}
}

func TestScheduleFor_InvalidSpec(t *testing.T) {
	if _, err := ScheduleFor(models.Scan{StartTime: ts, Recurrences: "every day"}); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestScheduler_Materialize_PoolSplitsTargets(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM sites WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(siteColumns).
			AddRow(7, "dmz", "", "10.0.0.1 10.0.0.2 10.0.0.3 10.0.0.9", "10.0.0.5", 4,
				nil, 3, false, "", false, "", ts, ts))
	mock.ExpectQuery(`FROM scan_commands WHERE id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(scanCommandColumns).AddRow(4, "nmap", "quick", "-sS --top-ports 100", ts, ts))
	mock.ExpectQuery(`FROM engine_pools p`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(poolColumns).AddRow(3, "pool", "{2,1}", ts, ts))
	mock.ExpectQuery(`FROM engines WHERE id = ANY\(\$1\) ORDER BY id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(engineColumns).
			AddRow(1, "engine1", "", "tok1", nil, ts, ts).
			AddRow(2, "engine2", "", "tok2", nil, ts, ts))
	mock.ExpectQuery(`FROM globally_excluded_targets ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(excludedColumns).AddRow(1, "10.0.0.9", "printer", ts, ts))
	mock.ExpectExec(`INSERT INTO scheduled_scans .* ON CONFLICT \(site_name, scan_engine, start_datetime\) DO NOTHING`).
		WithArgs("dmz", "engine2", at, "nmap", "-sS --top-ports 100", "10.0.0.1 10.0.0.2", "10.0.0.5 10.0.0.9", "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO scheduled_scans`).
		WithArgs("dmz", "engine1", at, "nmap", "-sS --top-ports 100", "10.0.0.3", "10.0.0.5 10.0.0.9", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := New(db).Materialize(context.Background(), models.Scan{ID: 1, Site: 7}, at)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 1 {
		t.Errorf("created: got %d, want 1 (second row already existed)", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduler_Materialize_AllTargetsExcluded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM sites WHERE id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(siteColumns).
			AddRow(7, "dmz", "", "10.0.0.1 10.0.0.2", "", 4, 1, nil, false, "", false, "", ts, ts))
	mock.ExpectQuery(`FROM scan_commands WHERE id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(scanCommandColumns).AddRow(4, "nmap", "quick", "-sS", ts, ts))
	mock.ExpectQuery(`FROM engines WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(engineColumns).AddRow(1, "engine1", "", "tok1", nil, ts, ts))
	mock.ExpectQuery(`FROM globally_excluded_targets ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(excludedColumns).AddRow(1, "10.0.0.0/24", "", ts, ts))

	n, err := New(db).Materialize(context.Background(), models.Scan{ID: 1, Site: 7}, ts)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 0 {
		t.Errorf("created: got %d, want 0", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduler_Materialize_SiteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM sites WHERE id = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(siteColumns))

	if _, err := New(db).Materialize(context.Background(), models.Scan{ID: 1, Site: 99}, ts); err == nil {
		t.Fatal("expected error for missing site")
	}
}

func TestScheduler_Retain(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM configuration ORDER BY id LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(configColumns).AddRow(1, true, 30, ts, ts))
	mock.ExpectExec(`DELETE FROM scheduled_scans`).
		WithArgs(sqlmock.AnyArg(), now.AddDate(0, 0, -30)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	s := New(db)
	s.Now = func() time.Time { return now }
	n, err := s.Retain(context.Background())
	if err != nil {
		t.Fatalf("Retain: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted: got %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduler_Retain_Disabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM configuration ORDER BY id LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(configColumns).AddRow(1, false, 30, ts, ts))

	n, err := New(db).Retain(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Retain: got %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduler_Sync(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	enabled := func() *sqlmock.Rows {
		return sqlmock.NewRows(scanColumns).
			AddRow(1, 7, "nightly", true, ts, "0 2 * * *", ts, ts).
			AddRow(2, 7, "broken", true, ts, "not a spec", ts, ts).
			AddRow(3, 8, "once", true, ts.Add(48*time.Hour), "", ts, ts)
	}
	mock.ExpectQuery(`FROM scans WHERE enable_scan = true ORDER BY id`).WillReturnRows(enabled())
	mock.ExpectQuery(`FROM scans WHERE enable_scan = true ORDER BY id`).WillReturnRows(enabled())
	mock.ExpectQuery(`FROM scans WHERE enable_scan = true ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(scanColumns).AddRow(1, 7, "nightly", true, ts, "0 3 * * *", ts, ts))

	s := New(db)
	ctx := context.Background()

	s.Sync(ctx)
	if got := len(s.cron.Entries()); got != 2 {
		t.Fatalf("entries after first sync: got %d, want 2", got)
	}
	first := s.entries[1].id

	s.Sync(ctx)
	if s.entries[1].id != first {
		t.Error("unchanged scan was rescheduled")
	}

	s.Sync(ctx)
	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("entries after last sync: got %d, want 1", got)
	}
	if s.entries[1].id == first {
		t.Error("changed recurrence was not rescheduled")
	}
	if _, ok := s.entries[3]; ok {
		t.Error("disabled scan is still scheduled")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
