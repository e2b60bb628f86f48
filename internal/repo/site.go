package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/scantron/internal/models"
)

const siteColumns = `id, site_name, description, targets, excluded_targets, scan_command_id,
	scan_engine_id, scan_engine_pool_id, email_scan_alerts, email_alert_addresses,
	email_scan_diff, email_scan_diff_addresses, created, last_updated`

// SiteRepo persists sites.
type SiteRepo struct {
	DB *sql.DB
}

// NewSiteRepo returns a new SiteRepo.
func NewSiteRepo(db *sql.DB) *SiteRepo {
	return &SiteRepo{DB: db}
}

func scanSite(row rowScanner) (*models.Site, error) {
	s := &models.Site{}
	var engine, pool sql.NullInt64
	err := row.Scan(&s.ID, &s.SiteName, &s.Description, &s.Targets, &s.ExcludedTargets, &s.ScanCommand,
		&engine, &pool, &s.EmailScanAlerts, &s.EmailAlertAddresses,
		&s.EmailScanDiff, &s.EmailScanDiffAddresses, &s.Created, &s.LastUpdated)
	if err != nil {
		return nil, err
	}
	s.ScanEngine = intPtr(engine)
	s.ScanEnginePool = intPtr(pool)
	return s, nil
}

// Count returns the number of sites.
func (r *SiteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM sites").Scan(&n)
	return n, err
}

// List returns sites ordered by id.
func (r *SiteRepo) List(ctx context.Context, limit, offset int) ([]models.Site, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+siteColumns+` FROM sites ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Site{}
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// GetByID returns one site, or nil if not found.
func (r *SiteRepo) GetByID(ctx context.Context, id int) (*models.Site, error) {
	s, err := scanSite(r.DB.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// Create inserts a site.
func (r *SiteRepo) Create(ctx context.Context, s *models.Site) (*models.Site, error) {
	out, err := scanSite(r.DB.QueryRowContext(ctx, `
		INSERT INTO sites (site_name, description, targets, excluded_targets, scan_command_id,
			scan_engine_id, scan_engine_pool_id, email_scan_alerts, email_alert_addresses,
			email_scan_diff, email_scan_diff_addresses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+siteColumns,
		s.SiteName, s.Description, s.Targets, s.ExcludedTargets, s.ScanCommand,
		nullInt(s.ScanEngine), nullInt(s.ScanEnginePool), s.EmailScanAlerts, s.EmailAlertAddresses,
		s.EmailScanDiff, s.EmailScanDiffAddresses,
	))
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Update stores every writable field. Returns nil if the site does not exist.
func (r *SiteRepo) Update(ctx context.Context, s *models.Site) (*models.Site, error) {
	out, err := scanSite(r.DB.QueryRowContext(ctx, `
		UPDATE sites
		SET site_name = $1, description = $2, targets = $3, excluded_targets = $4, scan_command_id = $5,
			scan_engine_id = $6, scan_engine_pool_id = $7, email_scan_alerts = $8, email_alert_addresses = $9,
			email_scan_diff = $10, email_scan_diff_addresses = $11, last_updated = NOW()
		WHERE id = $12
		RETURNING `+siteColumns,
		s.SiteName, s.Description, s.Targets, s.ExcludedTargets, s.ScanCommand,
		nullInt(s.ScanEngine), nullInt(s.ScanEnginePool), s.EmailScanAlerts, s.EmailAlertAddresses,
		s.EmailScanDiff, s.EmailScanDiffAddresses, s.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Delete removes a site and, by cascade, its scans.
func (r *SiteRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM sites WHERE id = $1`, id)
}
