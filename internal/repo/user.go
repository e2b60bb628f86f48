package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/scantron/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, username, password_hash, role, created_at`

// ErrInvalidCredentials is returned by Authenticate for unknown users and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepo persists console users.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo returns a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// Create hashes password with bcrypt and inserts the user.
func (r *UserRepo) Create(ctx context.Context, username, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		username, string(hash), role,
	))
	if err != nil {
		return nil, writeError(err)
	}
	return u, nil
}

// GetByID returns one user, or nil if not found.
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByUsername returns one user, or nil if not found.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// Authenticate returns the user when password matches its stored hash.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// List returns users ordered by id.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Update changes the role and, when password is not empty, the password. Returns nil if missing.
func (r *UserRepo) Update(ctx context.Context, id int, role, password string) (*models.User, error) {
	var hash any
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, `
		UPDATE users
		SET role = $1, password_hash = COALESCE($2, password_hash)
		WHERE id = $3
		RETURNING `+userColumns,
		role, hash, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, id int) error {
	return deleteByID(ctx, r.DB, `DELETE FROM users WHERE id = $1`, id)
}
