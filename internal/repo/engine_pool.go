package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/scantron/internal/models"
	"github.com/lib/pq"
)

const enginePoolSelect = `
	SELECT p.id, p.engine_pool_name,
		COALESCE(array_agg(m.engine_id ORDER BY m.position) FILTER (WHERE m.engine_id IS NOT NULL), '{}'),
		p.created, p.last_updated
	FROM engine_pools p
	LEFT JOIN engine_pool_members m ON m.pool_id = p.id
`

// EnginePoolRepo persists engine pools and their ordered members.
type EnginePoolRepo struct {
	DB *sql.DB
}

// NewEnginePoolRepo returns a new EnginePoolRepo.
func NewEnginePoolRepo(db *sql.DB) *EnginePoolRepo {
	return &EnginePoolRepo{DB: db}
}

func scanEnginePool(row rowScanner) (*models.EnginePool, error) {
	p := &models.EnginePool{}
	var members pq.Int64Array
	if err := row.Scan(&p.ID, &p.EnginePoolName, &members, &p.Created, &p.LastUpdated); err != nil {
		return nil, err
	}
	p.ScanEngines = make([]int, len(members))
	for i, id := range members {
		p.ScanEngines[i] = int(id)
	}
	return p, nil
}

// Count returns the number of engine pools.
func (r *EnginePoolRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM engine_pools").Scan(&n)
	return n, err
}

// List returns pools ordered by id, each with its engine ids in pool order.
func (r *EnginePoolRepo) List(ctx context.Context, limit, offset int) ([]models.EnginePool, error) {
	rows, err := r.DB.QueryContext(ctx,
		enginePoolSelect+` GROUP BY p.id ORDER BY p.id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.EnginePool{}
	for rows.Next() {
		p, err := scanEnginePool(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// GetByID returns one pool, or nil if not found.
func (r *EnginePoolRepo) GetByID(ctx context.Context, id int) (*models.EnginePool, error) {
	p, err := scanEnginePool(r.DB.QueryRowContext(ctx,
		enginePoolSelect+` WHERE p.id = $1 GROUP BY p.id`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// Create inserts a pool and its members in one transaction.
func (r *EnginePoolRepo) Create(ctx context.Context, p *models.EnginePool) (*models.EnginePool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO engine_pools (engine_pool_name) VALUES ($1) RETURNING id`,
		p.EnginePoolName,
	).Scan(&id)
	if err != nil {
		return nil, writeError(err)
	}
	if err := setPoolMembers(ctx, tx, id, p.ScanEngines); err != nil {
		return nil, err
	}

	out, err := scanEnginePool(tx.QueryRowContext(ctx, enginePoolSelect+` WHERE p.id = $1 GROUP BY p.id`, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames a pool and replaces its members. Returns nil if the pool does not exist.
func (r *EnginePoolRepo) Update(ctx context.Context, p *models.EnginePool) (*models.EnginePool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE engine_pools SET engine_pool_name = $1, last_updated = NOW() WHERE id = $2`,
		p.EnginePoolName, p.ID,
	)
	if err != nil {
		return nil, writeError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM engine_pool_members WHERE pool_id = $1`, p.ID); err != nil {
		return nil, err
	}
	if err := setPoolMembers(ctx, tx, p.ID, p.ScanEngines); err != nil {
		return nil, err
	}

	out, err := scanEnginePool(tx.QueryRowContext(ctx, enginePoolSelect+` WHERE p.id = $1 GROUP BY p.id`, p.ID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func setPoolMembers(ctx context.Context, tx *sql.Tx, poolID int, engines []int) error {
	if len(engines) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO engine_pool_members (pool_id, engine_id, position)
		SELECT $1, m.engine_id, m.position
		FROM unnest($2::int[]) WITH ORDINALITY AS m(engine_id, position)
	`, poolID, pq.Array(engines))
	if err != nil {
		return fmt.Errorf("pool members: %w", writeError(err))
	}
	return nil
}

// Delete removes a pool. Sites still pointing at it yield ErrInUse.
func (r *EnginePoolRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM engine_pools WHERE id = $1`, id)
}
