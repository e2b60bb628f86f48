package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/scantron/internal/models"
)

const excludedColumns = `id, globally_excluded_targets, note, created, last_updated`

// GloballyExcludedTargetRepo persists targets that are never scanned.
type GloballyExcludedTargetRepo struct {
	DB *sql.DB
}

// NewGloballyExcludedTargetRepo returns a new GloballyExcludedTargetRepo.
func NewGloballyExcludedTargetRepo(db *sql.DB) *GloballyExcludedTargetRepo {
	return &GloballyExcludedTargetRepo{DB: db}
}

func scanExcluded(row rowScanner) (*models.GloballyExcludedTarget, error) {
	g := &models.GloballyExcludedTarget{}
	if err := row.Scan(&g.ID, &g.GloballyExcludedTargets, &g.Note, &g.Created, &g.LastUpdated); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GloballyExcludedTargetRepo) query(ctx context.Context, query string, args ...any) ([]models.GloballyExcludedTarget, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.GloballyExcludedTarget{}
	for rows.Next() {
		g, err := scanExcluded(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

// Count returns the number of rows.
func (r *GloballyExcludedTargetRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM globally_excluded_targets").Scan(&n)
	return n, err
}

// List returns rows ordered by id.
func (r *GloballyExcludedTargetRepo) List(ctx context.Context, limit, offset int) ([]models.GloballyExcludedTarget, error) {
	return r.query(ctx, `SELECT `+excludedColumns+` FROM globally_excluded_targets ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
}

// All returns every row (for the scheduler).
func (r *GloballyExcludedTargetRepo) All(ctx context.Context) ([]models.GloballyExcludedTarget, error) {
	return r.query(ctx, `SELECT `+excludedColumns+` FROM globally_excluded_targets ORDER BY id`)
}

// GetByID returns one row, or nil if not found.
func (r *GloballyExcludedTargetRepo) GetByID(ctx context.Context, id int) (*models.GloballyExcludedTarget, error) {
	g, err := scanExcluded(r.DB.QueryRowContext(ctx,
		`SELECT `+excludedColumns+` FROM globally_excluded_targets WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

// Create inserts a row.
func (r *GloballyExcludedTargetRepo) Create(ctx context.Context, g *models.GloballyExcludedTarget) (*models.GloballyExcludedTarget, error) {
	return scanExcluded(r.DB.QueryRowContext(ctx, `
		INSERT INTO globally_excluded_targets (globally_excluded_targets, note)
		VALUES ($1, $2)
		RETURNING `+excludedColumns,
		g.GloballyExcludedTargets, g.Note,
	))
}

// Update stores targets and note. Returns nil if the row does not exist.
func (r *GloballyExcludedTargetRepo) Update(ctx context.Context, g *models.GloballyExcludedTarget) (*models.GloballyExcludedTarget, error) {
	out, err := scanExcluded(r.DB.QueryRowContext(ctx, `
		UPDATE globally_excluded_targets
		SET globally_excluded_targets = $1, note = $2, last_updated = NOW()
		WHERE id = $3
		RETURNING `+excludedColumns,
		g.GloballyExcludedTargets, g.Note, g.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return out, err
}

// Delete removes a row.
func (r *GloballyExcludedTargetRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM globally_excluded_targets WHERE id = $1`, id)
}
