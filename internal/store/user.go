package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/melo-app/accounts/types"
)

// pq error code for unique_violation.
const uniqueViolation = "23505"

// patchableColumns whitelists the columns a field-map update may touch.
var patchableColumns = map[string]bool{
	"email":         true,
	"password_hash": true,
	"full_name":     true,
	"role":          true,
}

// UserRepository handles persistence for users. Uniqueness of email is
// enforced by the database, so concurrent creates with the same address
// resolve to exactly one winner.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, email, full_name, role, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, email, full_name, role, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanRow(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (email, full_name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.FullName,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapConstraintError(err)
	}
	return user, nil
}

// Update applies the given column/value map to the record and returns the
// updated row. Columns outside the patchable whitelist are rejected.
func (r *UserRepository) Update(ctx context.Context, id int, fields map[string]any) (types.User, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	assignments := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for column, value := range fields {
		if !patchableColumns[column] {
			return types.User{}, fmt.Errorf("column %q is not patchable", column)
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now())
	assignments = append(assignments, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING id, email, full_name, role, password_hash, created_at, updated_at`,
		strings.Join(assignments, ", "), len(args))

	user, err := r.scanRow(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return types.User{}, mapConstraintError(err)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanRow(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return ErrConflict
	}
	return err
}
