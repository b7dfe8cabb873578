package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

// SettingsRepository stores admin-editable knobs as raw JSON values.
// Absence of a key is normal (the settings service falls back to
// defaults), so Get reports it via ok rather than an error.
type SettingsRepository struct {
	db Querier
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	q := `SELECT value FROM settings WHERE key = $1`

	if err := r.db.QueryRow(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to fetch setting")
	}
	return value, true, nil
}

func (r *SettingsRepository) Put(ctx context.Context, key string, value []byte) error {
	q := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, key, value); err != nil {
		return errors.Wrap(err, "failed to store setting")
	}
	return nil
}

func (r *SettingsRepository) All(ctx context.Context) ([]*model.Setting, error) {
	q := `SELECT key, value, updated_at FROM settings ORDER BY key`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list settings")
	}
	defer rows.Close()

	var settings []*model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan setting")
		}
		settings = append(settings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list settings")
	}

	return settings, nil
}
