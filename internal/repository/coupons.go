package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

type CouponsRepository struct {
	db Querier
}

const couponColumns = `id, code, kind, value, min_amount, max_uses, used_count, applies_to, valid_from, valid_until, active, created_at, updated_at`

func scanCoupon(s scanner) (*model.Coupon, error) {
	var c model.Coupon
	err := s.Scan(
		&c.ID,
		&c.Code,
		&c.Kind,
		&c.Value,
		&c.MinAmount,
		&c.MaxUses,
		&c.UsedCount,
		&c.AppliesTo,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponsRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	c, err := scanCoupon(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "coupons")
		}
		return nil, errors.Wrap(err, "failed to fetch coupon")
	}
	return c, nil
}

// GetByCode looks a coupon up by its code. Codes are stored uppercase;
// callers normalize input before the lookup.
func (r *CouponsRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	q := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	c, err := scanCoupon(r.db.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "coupons")
		}
		return nil, errors.Wrap(err, "failed to fetch coupon by code")
	}
	return c, nil
}

// Redeem increments used_count, refusing once max_uses is reached. The
// guard lives in the UPDATE itself so concurrent checkouts inside their
// payment transactions cannot oversubscribe a limited coupon. Reports
// false when the coupon was exhausted (or deactivated meanwhile).
func (r *CouponsRepository) Redeem(ctx context.Context, id int64) (bool, error) {
	q := `
		UPDATE coupons SET used_count = used_count + 1, updated_at = now()
		WHERE id = $1
		  AND active
		  AND (max_uses IS NULL OR used_count < max_uses)`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to redeem coupon")
	}
	return tag.RowsAffected() == 1, nil
}

// Release gives one redemption back after the payment that reserved it
// expired, was declined or was cancelled.
func (r *CouponsRepository) Release(ctx context.Context, id int64) error {
	q := `
		UPDATE coupons SET used_count = GREATEST(used_count - 1, 0), updated_at = now()
		WHERE id = $1`

	if _, err := r.db.Exec(ctx, q, id); err != nil {
		return errors.Wrap(err, "failed to release coupon redemption")
	}
	return nil
}

// List returns a page of coupons for the back-office, newest first.
func (r *CouponsRepository) List(ctx context.Context, limit, offset int) ([]*model.Coupon, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count coupons")
	}

	q := `
		SELECT ` + couponColumns + `
		FROM coupons
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list coupons")
	}
	defer rows.Close()

	var coupons []*model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan coupon")
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list coupons")
	}

	return coupons, total, nil
}

func (r *CouponsRepository) Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	q := `
		INSERT INTO coupons (code, kind, value, min_amount, max_uses, applies_to, valid_from, valid_until, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + couponColumns

	created, err := scanCoupon(r.db.QueryRow(ctx, q,
		c.Code, c.Kind, c.Value, c.MinAmount, c.MaxUses,
		c.AppliesTo, c.ValidFrom, c.ValidUntil, c.Active,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create coupon")
	}
	return created, nil
}

// Update rewrites the coupon's definition. used_count is not touched
// here; only Redeem and Release move it.
func (r *CouponsRepository) Update(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	q := `
		UPDATE coupons SET
			code        = $2,
			kind        = $3,
			value       = $4,
			min_amount  = $5,
			max_uses    = $6,
			applies_to  = $7,
			valid_from  = $8,
			valid_until = $9,
			active      = $10,
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + couponColumns

	updated, err := scanCoupon(r.db.QueryRow(ctx, q,
		c.ID, c.Code, c.Kind, c.Value, c.MinAmount, c.MaxUses,
		c.AppliesTo, c.ValidFrom, c.ValidUntil, c.Active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "coupons")
		}
		return nil, errors.Wrap(err, "failed to update coupon")
	}
	return updated, nil
}

func (r *CouponsRepository) Delete(ctx context.Context, id int64) error {
	q := `DELETE FROM coupons WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete coupon")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "coupons")
	}
	return nil
}
