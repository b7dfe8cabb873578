package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

type PaymentsRepository struct {
	db Querier
}

const paymentColumns = `id, user_id, kind, booking_id, product_id, status, method, amount, discount, total, installments, coupon_id, gateway, gateway_id, pix_qr_code, pix_copy_paste, card_brand, card_last4, paid_at, expires_at, created_at, updated_at`

func paymentFields(p *model.Payment) []any {
	return []any{
		&p.ID, &p.UserID, &p.Kind, &p.BookingID, &p.ProductID, &p.Status, &p.Method,
		&p.Amount, &p.Discount, &p.Total, &p.Installments, &p.CouponID, &p.Gateway,
		&p.GatewayID, &p.PixQRCode, &p.PixCopyPaste, &p.CardBrand, &p.CardLast4,
		&p.PaidAt, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

func scanPayment(s scanner) (*model.Payment, error) {
	var p model.Payment
	if err := s.Scan(paymentFields(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentsRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	q := `
		INSERT INTO payments (user_id, kind, booking_id, product_id, status, method, amount, discount, total,
		                      installments, coupon_id, gateway, gateway_id, pix_qr_code, pix_copy_paste,
		                      card_brand, card_last4, paid_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING ` + paymentColumns

	created, err := scanPayment(r.db.QueryRow(ctx, q,
		p.UserID, p.Kind, p.BookingID, p.ProductID, p.Status, p.Method, p.Amount, p.Discount, p.Total,
		p.Installments, p.CouponID, p.Gateway, p.GatewayID, p.PixQRCode, p.PixCopyPaste,
		p.CardBrand, p.CardLast4, p.PaidAt, p.ExpiresAt,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create payment")
	}
	return created, nil
}

func (r *PaymentsRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "payments")
		}
		return nil, errors.Wrap(err, "failed to fetch payment")
	}
	return p, nil
}

// GetByGatewayID resolves a payment from the processor's id, which is how
// webhook events find their payment.
func (r *PaymentsRepository) GetByGatewayID(ctx context.Context, gateway, gatewayID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway = $1 AND gateway_id = $2`

	p, err := scanPayment(r.db.QueryRow(ctx, q, gateway, gatewayID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "payments")
		}
		return nil, errors.Wrap(err, "failed to fetch payment by gateway id")
	}
	return p, nil
}

// UpdateStatus transitions a payment from one exact status to another,
// compare-and-swap style. paidAt is stored when given (approvals), kept
// as-is otherwise. Reports false without error when the payment was no
// longer in the from status, which is how out-of-order and replayed
// webhook updates fall out harmlessly.
func (r *PaymentsRepository) UpdateStatus(ctx context.Context, id int64, from, to model.PaymentStatus, paidAt *time.Time) (bool, error) {
	q := `
		UPDATE payments SET status = $3, paid_at = COALESCE($4, paid_at), updated_at = now()
		WHERE id = $1 AND status = $2`

	tag, err := r.db.Exec(ctx, q, id, from, to, paidAt)
	if err != nil {
		return false, errors.Wrap(err, "failed to update payment status")
	}
	return tag.RowsAffected() == 1, nil
}

// ListPendingExpired returns pending payments whose expires_at deadline
// has passed, oldest first, for the expiry sweep.
func (r *PaymentsRepository) ListPendingExpired(ctx context.Context, now time.Time, limit int) ([]*model.Payment, error) {
	q := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`

	return r.queryPayments(ctx, q, now, limit)
}

// ListPendingForSync returns pending payments created before the cutoff
// whose deadline has not passed yet. The sync sweep re-polls the gateway
// for these in case a webhook went missing.
func (r *PaymentsRepository) ListPendingForSync(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Payment, error) {
	q := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending'
		  AND created_at <= $1
		  AND (expires_at IS NULL OR expires_at > now())
		ORDER BY created_at
		LIMIT $2`

	return r.queryPayments(ctx, q, createdBefore, limit)
}

func (r *PaymentsRepository) queryPayments(ctx context.Context, q string, args ...any) ([]*model.Payment, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query payments")
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan payment")
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to query payments")
	}

	return payments, nil
}

// ListByUser returns a page of the customer's payments, newest first,
// plus the total count.
func (r *PaymentsRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Payment, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM payments WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count payments")
	}

	q := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	payments, err := r.queryPayments(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// PaymentFilter narrows admin payment listings. Nil fields are ignored.
type PaymentFilter struct {
	Status *model.PaymentStatus
	Method *model.PaymentMethod
	Kind   *model.PaymentKind
	UserID *int64
}

// List returns a filtered page of payments for the back-office, newest
// first, plus the total count.
func (r *PaymentsRepository) List(ctx context.Context, filter PaymentFilter, limit, offset int) ([]*model.Payment, int, error) {
	var conds []string
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Method != nil {
		args = append(args, *filter.Method)
		conds = append(conds, fmt.Sprintf("method = $%d", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM payments ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count payments")
	}

	q := fmt.Sprintf(`
		SELECT %s FROM payments %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	payments, err := r.queryPayments(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListByCoupon returns payments that redeemed the coupon, for the usage
// view, plus the total count.
func (r *PaymentsRepository) ListByCoupon(ctx context.Context, couponID int64, limit, offset int) ([]*model.Payment, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM payments WHERE coupon_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, couponID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count coupon payments")
	}

	q := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE coupon_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	payments, err := r.queryPayments(ctx, q, couponID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// PaymentExportRow pairs a payment with the customer email and redeemed
// coupon code for the accounting export.
type PaymentExportRow struct {
	Payment    *model.Payment
	UserEmail  string
	CouponCode *string
}

// ListForExport returns payments created within [from, to), oldest first,
// with customer and coupon details joined.
func (r *PaymentsRepository) ListForExport(ctx context.Context, from, to time.Time) ([]*PaymentExportRow, error) {
	q := `
		SELECT ` + prefixColumns("p", paymentColumns) + `, u.email, c.code
		FROM payments p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN coupons c ON c.id = p.coupon_id
		WHERE p.created_at >= $1 AND p.created_at < $2
		ORDER BY p.created_at, p.id`

	rows, err := r.db.Query(ctx, q, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list payments for export")
	}
	defer rows.Close()

	var result []*PaymentExportRow
	for rows.Next() {
		var p model.Payment
		var row PaymentExportRow

		fields := append(paymentFields(&p), &row.UserEmail, &row.CouponCode)
		if err := rows.Scan(fields...); err != nil {
			return nil, errors.Wrap(err, "failed to scan payment export row")
		}

		row.Payment = &p
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list payments for export")
	}

	return result, nil
}

// ExistsForProduct reports whether any payment ever referenced the
// product, which decides delete versus deactivate in the back-office.
func (r *PaymentsRepository) ExistsForProduct(ctx context.Context, productID int64) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM payments WHERE product_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, productID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check product payments")
	}
	return exists, nil
}
