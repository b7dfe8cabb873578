package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

// UsersRepository persists accounts. Emails are CITEXT, so lookups and
// the unique constraint are case-insensitive regardless of what the
// service normalizes.
type UsersRepository struct {
	db Querier
}

const userColumns = `id, name, email, cpf, phone, password_hash, role, created_at, updated_at`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.CPF,
		&u.Phone,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a fresh account. A duplicate email surfaces as a unique
// violation for the error handler to translate.
func (r *UsersRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		INSERT INTO users (name, email, cpf, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, q, u.Name, u.Email, u.CPF, u.Phone, u.PasswordHash, u.Role))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return created, nil
}

// UpsertByEmail resolves an account by email, creating it when absent.
// Guest checkout and registration both funnel through here: profile
// fields fill in blanks without clobbering existing values, and an
// already-set password always wins so an upsert can never overwrite
// someone's credentials.
func (r *UsersRepository) UpsertByEmail(ctx context.Context, u *model.User) (*model.User, error) {
	q := `
		INSERT INTO users (name, email, cpf, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, 'customer')
		ON CONFLICT (email) DO UPDATE SET
			name          = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
			cpf           = COALESCE(users.cpf, EXCLUDED.cpf),
			phone         = COALESCE(EXCLUDED.phone, users.phone),
			password_hash = COALESCE(users.password_hash, EXCLUDED.password_hash),
			updated_at    = now()
		RETURNING ` + userColumns

	upserted, err := scanUser(r.db.QueryRow(ctx, q, u.Name, u.Email, u.CPF, u.Phone, u.PasswordHash))
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user")
	}
	return upserted, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "users")
		}
		return nil, errors.Wrap(err, "failed to fetch user")
	}
	return u, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "users")
		}
		return nil, errors.Wrap(err, "failed to fetch user by email")
	}
	return u, nil
}

// LockByID takes a row lock on the user for the duration of the current
// transaction. Credit spends lock first so two concurrent checkouts can't
// both pass the balance check.
func (r *UsersRepository) LockByID(ctx context.Context, id int64) error {
	q := `SELECT id FROM users WHERE id = $1 FOR UPDATE`

	var locked int64
	if err := r.db.QueryRow(ctx, q, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return noRows(err, "users")
		}
		return errors.Wrap(err, "failed to lock user")
	}
	return nil
}

// SetPassword stores a new bcrypt hash, used when a guest account is
// claimed through registration.
func (r *UsersRepository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	q := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return errors.Wrap(err, "failed to set password")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "users")
	}
	return nil
}

// UpdateProfile updates the mutable profile fields. Nil pointers leave
// the stored value untouched.
func (r *UsersRepository) UpdateProfile(ctx context.Context, id int64, name, cpf, phone *string) (*model.User, error) {
	q := `
		UPDATE users SET
			name       = COALESCE($2, name),
			cpf        = COALESCE($3, cpf),
			phone      = COALESCE($4, phone),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, q, id, name, cpf, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "users")
		}
		return nil, errors.Wrap(err, "failed to update user profile")
	}
	return u, nil
}

// List returns a page of users plus the total count. A non-empty search
// term matches name or email, case-insensitively.
func (r *UsersRepository) List(ctx context.Context, search string, limit, offset int) ([]*model.User, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, fmt.Sprintf("%%%s%%", search))
	}

	var total int
	countQuery := `SELECT count(*) FROM users ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count users")
	}

	q := fmt.Sprintf(`
		SELECT %s FROM users %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list users")
	}

	return users, total, nil
}
