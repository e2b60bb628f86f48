package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/scantron/internal/models"
)

const scanCommandColumns = `id, scan_binary, scan_command_name, scan_command, created, last_updated`

// ScanCommandRepo persists named scan command lines.
type ScanCommandRepo struct {
	DB *sql.DB
}

// NewScanCommandRepo returns a new ScanCommandRepo.
func NewScanCommandRepo(db *sql.DB) *ScanCommandRepo {
	return &ScanCommandRepo{DB: db}
}

func scanScanCommand(row rowScanner) (*models.ScanCommand, error) {
	c := &models.ScanCommand{}
	if err := row.Scan(&c.ID, &c.ScanBinary, &c.ScanCommandName, &c.ScanCommand, &c.Created, &c.LastUpdated); err != nil {
		return nil, err
	}
	return c, nil
}

// Count returns the number of scan commands.
func (r *ScanCommandRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM scan_commands").Scan(&n)
	return n, err
}

// List returns scan commands ordered by id.
func (r *ScanCommandRepo) List(ctx context.Context, limit, offset int) ([]models.ScanCommand, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+scanCommandColumns+` FROM scan_commands ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.ScanCommand{}
	for rows.Next() {
		c, err := scanScanCommand(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// GetByID returns one scan command, or nil if not found.
func (r *ScanCommandRepo) GetByID(ctx context.Context, id int) (*models.ScanCommand, error) {
	c, err := scanScanCommand(r.DB.QueryRowContext(ctx,
		`SELECT `+scanCommandColumns+` FROM scan_commands WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// Create inserts a scan command.
func (r *ScanCommandRepo) Create(ctx context.Context, c *models.ScanCommand) (*models.ScanCommand, error) {
	out, err := scanScanCommand(r.DB.QueryRowContext(ctx, `
		INSERT INTO scan_commands (scan_binary, scan_command_name, scan_command)
		VALUES ($1, $2, $3)
		RETURNING `+scanCommandColumns,
		c.ScanBinary, c.ScanCommandName, c.ScanCommand,
	))
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Update stores every field. Returns nil if the scan command does not exist.
func (r *ScanCommandRepo) Update(ctx context.Context, c *models.ScanCommand) (*models.ScanCommand, error) {
	out, err := scanScanCommand(r.DB.QueryRowContext(ctx, `
		UPDATE scan_commands
		SET scan_binary = $1, scan_command_name = $2, scan_command = $3, last_updated = NOW()
		WHERE id = $4
		RETURNING `+scanCommandColumns,
		c.ScanBinary, c.ScanCommandName, c.ScanCommand, c.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Delete removes a scan command. Sites still using it yield ErrInUse.
func (r *ScanCommandRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM scan_commands WHERE id = $1`, id)
}
