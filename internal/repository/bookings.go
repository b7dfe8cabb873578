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

// BookingsRepository persists reservations. Slot overlap is not checked
// here: the bookings_room_slot_excl exclusion constraint rejects the
// losing insert and the error handler turns that into a 409.
type BookingsRepository struct {
	db Querier
}

const bookingColumns = `id, reference, user_id, room_id, starts_at, ends_at, status, amount, paid_with, payment_id, notes, reminder_sent_at, cancelled_at, created_at, updated_at`

// bookingJoinColumns prefixes every column for queries that join rooms.
const bookingJoinColumns = `b.id, b.reference, b.user_id, b.room_id, b.starts_at, b.ends_at, b.status, b.amount, b.paid_with, b.payment_id, b.notes, b.reminder_sent_at, b.cancelled_at, b.created_at, b.updated_at`

func bookingFields(b *model.Booking) []any {
	return []any{
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.RoomID,
		&b.StartsAt,
		&b.EndsAt,
		&b.Status,
		&b.Amount,
		&b.PaidWith,
		&b.PaymentID,
		&b.Notes,
		&b.ReminderSentAt,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func scanBooking(s scanner) (*model.Booking, error) {
	var b model.Booking
	if err := s.Scan(bookingFields(&b)...); err != nil {
		return nil, err
	}
	return &b, nil
}

// scanBookingWithRoom expects bookingJoinColumns followed by roomColumns.
func scanBookingWithRoom(s scanner) (*model.Booking, error) {
	var b model.Booking
	var room model.Room

	fields := bookingFields(&b)
	fields = append(fields,
		&room.ID,
		&room.Name,
		&room.Slug,
		&room.Description,
		&room.HourlyRate,
		&room.Capacity,
		&room.OpenHour,
		&room.CloseHour,
		&room.Active,
		&room.Position,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err := s.Scan(fields...); err != nil {
		return nil, err
	}

	b.Room = &room
	return &b, nil
}

// BookingContact pairs a booking (room populated) with the customer's
// contact details, for queries that feed notification emails.
type BookingContact struct {
	Booking   *model.Booking
	UserName  string
	UserEmail string
}

func (r *BookingsRepository) Create(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	q := `
		INSERT INTO bookings (reference, user_id, room_id, starts_at, ends_at, status, amount, paid_with, payment_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + bookingColumns

	created, err := scanBooking(r.db.QueryRow(ctx, q,
		b.Reference, b.UserID, b.RoomID, b.StartsAt, b.EndsAt,
		b.Status, b.Amount, b.PaidWith, b.PaymentID, b.Notes,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create booking")
	}
	return created, nil
}

func (r *BookingsRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	q := `
		SELECT ` + bookingJoinColumns + `, ` + prefixColumns("r", roomColumns) + `
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.id = $1`

	b, err := scanBookingWithRoom(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "bookings")
		}
		return nil, errors.Wrap(err, "failed to fetch booking")
	}
	return b, nil
}

func (r *BookingsRepository) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	q := `
		SELECT ` + bookingJoinColumns + `, ` + prefixColumns("r", roomColumns) + `
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.reference = $1`

	b, err := scanBookingWithRoom(r.db.QueryRow(ctx, q, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "bookings")
		}
		return nil, errors.Wrap(err, "failed to fetch booking by reference")
	}
	return b, nil
}

// ListByUser returns a customer's bookings, upcoming soonest-first and
// then past most-recent-first, plus the total count for pagination.
func (r *BookingsRepository) ListByUser(ctx context.Context, userID int64, status *model.BookingStatus, limit, offset int) ([]*model.Booking, int, error) {
	where := `WHERE b.user_id = $1`
	args := []any{userID}
	if status != nil {
		args = append(args, *status)
		where += fmt.Sprintf(` AND b.status = $%d`, len(args))
	}

	var total int
	countQuery := `SELECT count(*) FROM bookings b ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count bookings")
	}

	q := fmt.Sprintf(`
		SELECT %s, %s
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		%s
		ORDER BY (b.starts_at >= now()) DESC,
		         CASE WHEN b.starts_at >= now() THEN b.starts_at END ASC,
		         b.starts_at DESC
		LIMIT $%d OFFSET $%d`,
		bookingJoinColumns, prefixColumns("r", roomColumns), where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list bookings")
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBookingWithRoom(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan booking")
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list bookings")
	}

	return bookings, total, nil
}

// ListForRoomBetween returns the live (pending or confirmed) bookings
// that overlap the [from, to) window, for the availability grid.
func (r *BookingsRepository) ListForRoomBetween(ctx context.Context, roomID int64, from, to time.Time) ([]*model.Booking, error) {
	q := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND starts_at < $3
		  AND ends_at > $2
		ORDER BY starts_at`

	rows, err := r.db.Query(ctx, q, roomID, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list room bookings")
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan booking")
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list room bookings")
	}

	return bookings, nil
}

// BookingFilter narrows admin booking listings. Nil fields are ignored;
// From/To bound starts_at as a half-open [From, To) window.
type BookingFilter struct {
	Status *model.BookingStatus
	RoomID *int64
	From   *time.Time
	To     *time.Time
}

// List returns a filtered page of bookings for the back-office, newest
// start first, plus the total count.
func (r *BookingsRepository) List(ctx context.Context, filter BookingFilter, limit, offset int) ([]*model.Booking, int, error) {
	var conds []string
	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		conds = append(conds, fmt.Sprintf("b.room_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("b.starts_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("b.starts_at < $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM bookings b ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count bookings")
	}

	q := fmt.Sprintf(`
		SELECT %s, %s
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		%s
		ORDER BY b.starts_at DESC, b.id DESC
		LIMIT $%d OFFSET $%d`,
		bookingJoinColumns, prefixColumns("r", roomColumns), where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list bookings")
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBookingWithRoom(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan booking")
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list bookings")
	}

	return bookings, total, nil
}

// Confirm moves a pending booking to confirmed. Reports false when the
// booking was not pending, so a replayed webhook changes nothing.
func (r *BookingsRepository) Confirm(ctx context.Context, id int64) (bool, error) {
	q := `UPDATE bookings SET status = 'confirmed', updated_at = now() WHERE id = $1 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to confirm booking")
	}
	return tag.RowsAffected() == 1, nil
}

// Cancel moves a live booking to cancelled and stamps cancelled_at. The
// row leaves the exclusion index, freeing the slot immediately.
func (r *BookingsRepository) Cancel(ctx context.Context, id int64, at time.Time) (bool, error) {
	q := `
		UPDATE bookings SET status = 'cancelled', cancelled_at = $2, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'confirmed')`

	tag, err := r.db.Exec(ctx, q, id, at)
	if err != nil {
		return false, errors.Wrap(err, "failed to cancel booking")
	}
	return tag.RowsAffected() == 1, nil
}

// Complete marks a confirmed booking as completed (back-office action
// after the visit happened).
func (r *BookingsRepository) Complete(ctx context.Context, id int64) (bool, error) {
	q := `UPDATE bookings SET status = 'completed', updated_at = now() WHERE id = $1 AND status = 'confirmed'`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to complete booking")
	}
	return tag.RowsAffected() == 1, nil
}

// SetPaymentID links the gateway payment created for this booking.
// Payments are inserted after the booking row, so the link closes here.
func (r *BookingsRepository) SetPaymentID(ctx context.Context, bookingID, paymentID int64) error {
	q := `UPDATE bookings SET payment_id = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, bookingID, paymentID)
	if err != nil {
		return errors.Wrap(err, "failed to link payment to booking")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "bookings")
	}
	return nil
}

// ExistsForRoom reports whether any booking ever referenced the room,
// which decides delete versus deactivate in the back-office.
func (r *BookingsRepository) ExistsForRoom(ctx context.Context, roomID int64) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM bookings WHERE room_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, roomID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check room bookings")
	}
	return exists, nil
}

// ListReminderDue returns confirmed, not-yet-reminded bookings starting
// inside [from, to), with room and customer contact loaded for the email.
func (r *BookingsRepository) ListReminderDue(ctx context.Context, from, to time.Time) ([]*BookingContact, error) {
	q := `
		SELECT ` + bookingJoinColumns + `, ` + prefixColumns("r", roomColumns) + `, u.name, u.email
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		JOIN users u ON u.id = b.user_id
		WHERE b.status = 'confirmed'
		  AND b.reminder_sent_at IS NULL
		  AND b.starts_at >= $1
		  AND b.starts_at < $2
		ORDER BY b.starts_at`

	rows, err := r.db.Query(ctx, q, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reminder-due bookings")
	}
	defer rows.Close()

	var contacts []*BookingContact
	for rows.Next() {
		var b model.Booking
		var room model.Room
		var contact BookingContact

		fields := bookingFields(&b)
		fields = append(fields,
			&room.ID, &room.Name, &room.Slug, &room.Description, &room.HourlyRate,
			&room.Capacity, &room.OpenHour, &room.CloseHour, &room.Active, &room.Position,
			&room.CreatedAt, &room.UpdatedAt,
			&contact.UserName, &contact.UserEmail,
		)
		if err := rows.Scan(fields...); err != nil {
			return nil, errors.Wrap(err, "failed to scan reminder-due booking")
		}

		b.Room = &room
		contact.Booking = &b
		contacts = append(contacts, &contact)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list reminder-due bookings")
	}

	return contacts, nil
}

// MarkRemindersSent stamps reminder_sent_at on the given bookings so the
// next sweep skips them.
func (r *BookingsRepository) MarkRemindersSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	q := `UPDATE bookings SET reminder_sent_at = now() WHERE id = ANY($1)`

	if _, err := r.db.Exec(ctx, q, ids); err != nil {
		return errors.Wrap(err, "failed to mark reminders sent")
	}
	return nil
}
