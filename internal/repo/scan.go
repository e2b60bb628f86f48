package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/scantron/internal/models"
)

const scanColumns = `id, site_id, scan_name, enable_scan, start_time, recurrences, created, last_updated`

// ScanRepo persists scan definitions.
type ScanRepo struct {
	DB *sql.DB
}

// NewScanRepo returns a new ScanRepo.
func NewScanRepo(db *sql.DB) *ScanRepo {
	return &ScanRepo{DB: db}
}

func scanScan(row rowScanner) (*models.Scan, error) {
	s := &models.Scan{}
	err := row.Scan(&s.ID, &s.Site, &s.ScanName, &s.EnableScan, &s.StartTime, &s.Recurrences, &s.Created, &s.LastUpdated)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ScanRepo) query(ctx context.Context, query string, args ...any) ([]models.Scan, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Scan{}
	for rows.Next() {
		s, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// Count returns the number of scans.
func (r *ScanRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM scans").Scan(&n)
	return n, err
}

// List returns scans, most recent first.
func (r *ScanRepo) List(ctx context.Context, limit, offset int) ([]models.Scan, error) {
	return r.query(ctx, `SELECT `+scanColumns+` FROM scans ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
}

// ListEnabled returns all enabled scans (for the cron runner).
func (r *ScanRepo) ListEnabled(ctx context.Context) ([]models.Scan, error) {
	return r.query(ctx, `SELECT `+scanColumns+` FROM scans WHERE enable_scan = true ORDER BY id`)
}

// GetByID returns one scan, or nil if not found.
func (r *ScanRepo) GetByID(ctx context.Context, id int) (*models.Scan, error) {
	s, err := scanScan(r.DB.QueryRowContext(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// Create inserts a scan.
func (r *ScanRepo) Create(ctx context.Context, s *models.Scan) (*models.Scan, error) {
	out, err := scanScan(r.DB.QueryRowContext(ctx, `
		INSERT INTO scans (site_id, scan_name, enable_scan, start_time, recurrences)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+scanColumns,
		s.Site, s.ScanName, s.EnableScan, s.StartTime, s.Recurrences,
	))
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Update stores every writable field. Returns nil if the scan does not exist.
func (r *ScanRepo) Update(ctx context.Context, s *models.Scan) (*models.Scan, error) {
	out, err := scanScan(r.DB.QueryRowContext(ctx, `
		UPDATE scans
		SET site_id = $1, scan_name = $2, enable_scan = $3, start_time = $4, recurrences = $5, last_updated = NOW()
		WHERE id = $6
		RETURNING `+scanColumns,
		s.Site, s.ScanName, s.EnableScan, s.StartTime, s.Recurrences, s.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Delete removes a scan definition. Scheduled scans already materialized are kept.
func (r *ScanRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM scans WHERE id = $1`, id)
}
