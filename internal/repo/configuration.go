package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/scantron/internal/models"
)

const configurationColumns = `id, enable_scan_retention, scan_retention_in_days, created, last_updated`

// ConfigurationRepo persists console configuration rows.
type ConfigurationRepo struct {
	DB *sql.DB
}

// NewConfigurationRepo returns a new ConfigurationRepo.
func NewConfigurationRepo(db *sql.DB) *ConfigurationRepo {
	return &ConfigurationRepo{DB: db}
}

func scanConfiguration(row rowScanner) (*models.Configuration, error) {
	c := &models.Configuration{}
	err := row.Scan(&c.ID, &c.EnableScanRetention, &c.ScanRetentionInDays, &c.Created, &c.LastUpdated)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Count returns the number of configuration rows.
func (r *ConfigurationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM configuration").Scan(&n)
	return n, err
}

// List returns configuration rows ordered by id.
func (r *ConfigurationRepo) List(ctx context.Context, limit, offset int) ([]models.Configuration, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+configurationColumns+` FROM configuration ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Configuration{}
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// GetByID returns one configuration row, or nil if not found.
func (r *ConfigurationRepo) GetByID(ctx context.Context, id int) (*models.Configuration, error) {
	c, err := scanConfiguration(r.DB.QueryRowContext(ctx,
		`SELECT `+configurationColumns+` FROM configuration WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// Current returns the configuration in effect (the lowest id), or nil if the table is empty.
func (r *ConfigurationRepo) Current(ctx context.Context) (*models.Configuration, error) {
	c, err := scanConfiguration(r.DB.QueryRowContext(ctx,
		`SELECT `+configurationColumns+` FROM configuration ORDER BY id LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// Update stores the retention settings. Returns nil if the row does not exist.
func (r *ConfigurationRepo) Update(ctx context.Context, c *models.Configuration) (*models.Configuration, error) {
	out, err := scanConfiguration(r.DB.QueryRowContext(ctx, `
		UPDATE configuration
		SET enable_scan_retention = $1, scan_retention_in_days = $2, last_updated = NOW()
		WHERE id = $3
		RETURNING `+configurationColumns,
		c.EnableScanRetention, c.ScanRetentionInDays, c.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return out, err
}
