package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/scantron/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const engineColumns = `id, scan_engine, description, api_token, last_checkin, created, last_updated`

// EngineRepo persists scan engines.
type EngineRepo struct {
	DB *sql.DB
}

// NewEngineRepo returns a new EngineRepo.
func NewEngineRepo(db *sql.DB) *EngineRepo {
	return &EngineRepo{DB: db}
}

func scanEngine(row rowScanner) (*models.Engine, error) {
	e := &models.Engine{}
	var checkin sql.NullTime
	err := row.Scan(&e.ID, &e.ScanEngine, &e.Description, &e.APIToken, &checkin, &e.Created, &e.LastUpdated)
	if err != nil {
		return nil, err
	}
	e.LastCheckin = timePtr(checkin)
	return e, nil
}

func (r *EngineRepo) getOne(ctx context.Context, where string, arg any) (*models.Engine, error) {
	e, err := scanEngine(r.DB.QueryRowContext(ctx,
		`SELECT `+engineColumns+` FROM engines WHERE `+where+` = $1`, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *EngineRepo) query(ctx context.Context, query string, args ...any) ([]models.Engine, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Engine{}
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Count returns the number of engines.
func (r *EngineRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM engines").Scan(&n)
	return n, err
}

// List returns engines ordered by id.
func (r *EngineRepo) List(ctx context.Context, limit, offset int) ([]models.Engine, error) {
	return r.query(ctx, `SELECT `+engineColumns+` FROM engines ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListByIDs returns the engines whose id is in ids, ordered by id. Unknown ids are skipped.
func (r *EngineRepo) ListByIDs(ctx context.Context, ids []int) ([]models.Engine, error) {
	if len(ids) == 0 {
		return []models.Engine{}, nil
	}
	return r.query(ctx, `SELECT `+engineColumns+` FROM engines WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
}

// GetByID returns one engine, or nil if not found.
func (r *EngineRepo) GetByID(ctx context.Context, id int) (*models.Engine, error) {
	return r.getOne(ctx, "id", id)
}

// GetByToken returns the engine owning an API token, or nil.
func (r *EngineRepo) GetByToken(ctx context.Context, token string) (*models.Engine, error) {
	if token == "" {
		return nil, nil
	}
	return r.getOne(ctx, "api_token", token)
}

// Create inserts an engine with a freshly generated API token.
func (r *EngineRepo) Create(ctx context.Context, e *models.Engine) (*models.Engine, error) {
	out, err := scanEngine(r.DB.QueryRowContext(ctx, `
		INSERT INTO engines (scan_engine, description, api_token)
		VALUES ($1, $2, $3)
		RETURNING `+engineColumns,
		e.ScanEngine, e.Description, uuid.NewString(),
	))
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// Update stores name and description. Returns nil if the engine does not exist.
func (r *EngineRepo) Update(ctx context.Context, e *models.Engine) (*models.Engine, error) {
	out, err := scanEngine(r.DB.QueryRowContext(ctx, `
		UPDATE engines
		SET scan_engine = $1, description = $2, last_updated = NOW()
		WHERE id = $3
		RETURNING `+engineColumns,
		e.ScanEngine, e.Description, e.ID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, writeError(err)
	}
	return out, nil
}

// RotateToken replaces the engine's API token. Returns nil if the engine does not exist.
func (r *EngineRepo) RotateToken(ctx context.Context, id int) (*models.Engine, error) {
	out, err := scanEngine(r.DB.QueryRowContext(ctx, `
		UPDATE engines
		SET api_token = $1, last_updated = NOW()
		WHERE id = $2
		RETURNING `+engineColumns,
		uuid.NewString(), id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return out, err
}

// Touch records an engine check-in.
func (r *EngineRepo) Touch(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE engines SET last_checkin = NOW() WHERE id = $1`, id)
	return err
}

// Delete removes an engine. Sites still pointing at it yield ErrInUse.
func (r *EngineRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM engines WHERE id = $1`, id)
}
