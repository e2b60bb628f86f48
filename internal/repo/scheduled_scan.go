package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crucial707/scantron/internal/models"
	"github.com/lib/pq"
)

const scheduledScanColumns = `id, site_name, scan_engine, start_datetime, scan_binary, scan_command,
	targets, excluded_targets, scan_status, completed_time, result_file_base_name, scan_binary_process_id`

// ScheduledScanFilter narrows List and Count. Empty fields match everything.
type ScheduledScanFilter struct {
	ScanStatus string
	ScanEngine string
}

func (f ScheduledScanFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.ScanStatus != "" {
		args = append(args, f.ScanStatus)
		conds = append(conds, fmt.Sprintf("scan_status = $%d", len(args)))
	}
	if f.ScanEngine != "" {
		args = append(args, f.ScanEngine)
		conds = append(conds, fmt.Sprintf("scan_engine = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ScheduledScanRepo persists materialized scan runs.
type ScheduledScanRepo struct {
	DB *sql.DB
}

// NewScheduledScanRepo returns a new ScheduledScanRepo.
func NewScheduledScanRepo(db *sql.DB) *ScheduledScanRepo {
	return &ScheduledScanRepo{DB: db}
}

func scanScheduledScan(row rowScanner) (*models.ScheduledScan, error) {
	s := &models.ScheduledScan{}
	var completed sql.NullTime
	var pid sql.NullInt64
	err := row.Scan(&s.ID, &s.SiteName, &s.ScanEngine, &s.StartDatetime, &s.ScanBinary, &s.ScanCommand,
		&s.Targets, &s.ExcludedTargets, &s.ScanStatus, &completed, &s.ResultFileBaseName, &pid)
	if err != nil {
		return nil, err
	}
	s.CompletedTime = timePtr(completed)
	s.ScanBinaryProcessID = intPtr(pid)
	return s, nil
}

func (r *ScheduledScanRepo) query(ctx context.Context, query string, args ...any) ([]models.ScheduledScan, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.ScheduledScan{}
	for rows.Next() {
		s, err := scanScheduledScan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// Count returns the number of scheduled scans matching f.
func (r *ScheduledScanRepo) Count(ctx context.Context, f ScheduledScanFilter) (int, error) {
	where, args := f.where()
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM scheduled_scans"+where, args...).Scan(&n)
	return n, err
}

// List returns scheduled scans matching f, most recent start first.
func (r *ScheduledScanRepo) List(ctx context.Context, f ScheduledScanFilter, limit, offset int) ([]models.ScheduledScan, error) {
	where, args := f.where()
	n := len(args)
	args = append(args, limit, offset)
	return r.query(ctx, fmt.Sprintf(
		`SELECT %s FROM scheduled_scans%s ORDER BY start_datetime DESC, id DESC LIMIT $%d OFFSET $%d`,
		scheduledScanColumns, where, n+1, n+2,
	), args...)
}

// ListForEngine returns the engine's scans whose status is one of statuses, oldest start first.
func (r *ScheduledScanRepo) ListForEngine(ctx context.Context, engine string, statuses []string) ([]models.ScheduledScan, error) {
	return r.query(ctx,
		`SELECT `+scheduledScanColumns+` FROM scheduled_scans
		WHERE scan_engine = $1 AND scan_status = ANY($2)
		ORDER BY start_datetime, id`,
		engine, pq.Array(statuses),
	)
}

// GetByID returns one scheduled scan, or nil if not found.
func (r *ScheduledScanRepo) GetByID(ctx context.Context, id int) (*models.ScheduledScan, error) {
	s, err := scanScheduledScan(r.DB.QueryRowContext(ctx,
		`SELECT `+scheduledScanColumns+` FROM scheduled_scans WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// CreateIfAbsent inserts s unless a row for the same site, engine and start already exists.
// Reports whether a row was inserted.
func (r *ScheduledScanRepo) CreateIfAbsent(ctx context.Context, s *models.ScheduledScan) (bool, error) {
	status := s.ScanStatus
	if status == "" {
		status = models.ScanStatusPending
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO scheduled_scans (site_name, scan_engine, start_datetime, scan_binary, scan_command,
			targets, excluded_targets, scan_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (site_name, scan_engine, start_datetime) DO NOTHING`,
		s.SiteName, s.ScanEngine, s.StartDatetime, s.ScanBinary, s.ScanCommand,
		s.Targets, s.ExcludedTargets, status,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateProgress stores the fields an engine or operator may change. Returns nil if missing.
func (r *ScheduledScanRepo) UpdateProgress(ctx context.Context, s *models.ScheduledScan) (*models.ScheduledScan, error) {
	out, err := scanScheduledScan(r.DB.QueryRowContext(ctx, `
		UPDATE scheduled_scans
		SET scan_status = $1, completed_time = $2, result_file_base_name = $3, scan_binary_process_id = $4
		WHERE id = $5
		RETURNING `+scheduledScanColumns,
		s.ScanStatus, s.CompletedTime, s.ResultFileBaseName, nullInt(s.ScanBinaryProcessID), s.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return out, err
}

// DeleteFinishedBefore removes terminal scans completed before cutoff and returns how many went.
func (r *ScheduledScanRepo) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM scheduled_scans
		WHERE scan_status = ANY($1) AND completed_time IS NOT NULL AND completed_time < $2`,
		pq.Array([]string{models.ScanStatusCompleted, models.ScanStatusCancelled, models.ScanStatusError}), cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
