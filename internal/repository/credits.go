package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

// CreditsRepository manages the append-only credit-hour ledger. Entries
// are only ever inserted; a balance is the sum of a user's deltas, and
// corrections append compensating rows.
type CreditsRepository struct {
	db Querier
}

const creditEntryColumns = `id, user_id, delta_hours, kind, booking_id, payment_id, product_id, note, created_at`

func scanCreditEntry(s scanner) (*model.CreditEntry, error) {
	var e model.CreditEntry
	err := s.Scan(
		&e.ID,
		&e.UserID,
		&e.DeltaHours,
		&e.Kind,
		&e.BookingID,
		&e.PaymentID,
		&e.ProductID,
		&e.Note,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Balance returns the user's current credit-hour balance.
func (r *CreditsRepository) Balance(ctx context.Context, userID int64) (int, error) {
	q := `SELECT COALESCE(SUM(delta_hours), 0) FROM credit_entries WHERE user_id = $1`

	var balance int
	if err := r.db.QueryRow(ctx, q, userID).Scan(&balance); err != nil {
		return 0, errors.Wrap(err, "failed to sum credit balance")
	}
	return balance, nil
}

// Insert appends one ledger row. Spends that must not overdraw run
// inside a transaction that locks the user row first (see
// UsersRepository.LockByID) and re-checks Balance before inserting.
func (r *CreditsRepository) Insert(ctx context.Context, e *model.CreditEntry) (*model.CreditEntry, error) {
	q := `
		INSERT INTO credit_entries (user_id, delta_hours, kind, booking_id, payment_id, product_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + creditEntryColumns

	created, err := scanCreditEntry(r.db.QueryRow(ctx, q,
		e.UserID, e.DeltaHours, e.Kind, e.BookingID, e.PaymentID, e.ProductID, e.Note,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert credit entry")
	}
	return created, nil
}

// ListByUser returns a page of the user's ledger, newest first, plus the
// total row count.
func (r *CreditsRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.CreditEntry, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM credit_entries WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count credit entries")
	}

	q := `
		SELECT ` + creditEntryColumns + `
		FROM credit_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list credit entries")
	}
	defer rows.Close()

	var entries []*model.CreditEntry
	for rows.Next() {
		e, err := scanCreditEntry(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan credit entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list credit entries")
	}

	return entries, total, nil
}
