package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/billing"
	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/lib/analytics"
	"github.com/salaviva/backend/internal/lib/email"
	"github.com/salaviva/backend/internal/lib/job"
	"github.com/salaviva/backend/internal/lib/utils"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/sqlerr"
)

const (
	minBookingHours = 1
	maxBookingHours = 8

	referenceBytes    = 5
	referenceAttempts = 3
)

// BookingService reserves rooms. Credits bookings confirm immediately by
// spending ledger hours inside one transaction; gateway bookings hold the
// slot as pending until their PIX payment settles. Slot overlaps are left
// to the database exclusion constraint, so the happy path never races.
type BookingService struct {
	server    *server.Server
	repos     *repository.Repositories
	payments  *PaymentService
	settings  *SettingsService
	coupons   *CouponService
	audit     *AuditService
	analytics *analytics.Publisher
}

func NewBookingService(
	s *server.Server,
	repos *repository.Repositories,
	payments *PaymentService,
	settings *SettingsService,
	coupons *CouponService,
	audit *AuditService,
	publisher *analytics.Publisher,
) *BookingService {
	return &BookingService{
		server:    s,
		repos:     repos,
		payments:  payments,
		settings:  settings,
		coupons:   coupons,
		audit:     audit,
		analytics: publisher,
	}
}

// BookingInput is a reservation request.
type BookingInput struct {
	RoomSlug   string
	StartsAt   time.Time
	Hours      int
	PayWith    model.PaidWith
	Notes      string
	CouponCode string
}

// BookingCheckout is the creation response. Payment is set for gateway
// bookings; credits bookings are already confirmed and carry none.
type BookingCheckout struct {
	Booking *model.Booking `json:"booking"`
	Payment *model.Payment `json:"payment,omitempty"`
}

// BookingDetail is the single-booking response, with the payment attached
// when one exists.
type BookingDetail struct {
	Booking *model.Booking `json:"booking"`
	Payment *model.Payment `json:"payment,omitempty"`
}

// Create reserves a slot. Validation happens up front (whole hours,
// future start, advance limit, opening hours); then the credits and
// gateway paths diverge.
func (s *BookingService) Create(ctx context.Context, user *model.User, in BookingInput) (*BookingCheckout, error) {
	room, err := s.repos.Rooms.GetBySlug(ctx, in.RoomSlug)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, errs.NewNotFoundError("Room not found", true, nil)
	}

	if err := validateSlot(room, in, s.settings.BookingPolicy(ctx), time.Now()); err != nil {
		return nil, err
	}

	startsAt := in.StartsAt
	endsAt := startsAt.Add(time.Duration(in.Hours) * time.Hour)
	amount := billing.Round2(room.HourlyRate.Mul(decimal.NewFromInt(int64(in.Hours))))

	booking := &model.Booking{
		UserID:   user.ID,
		RoomID:   room.ID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Amount:   amount,
		PaidWith: in.PayWith,
	}
	if in.Notes != "" {
		booking.Notes = utils.Ptr(in.Notes)
	}

	switch in.PayWith {
	case model.PaidWithCredits:
		return s.createWithCredits(ctx, user, room, booking, in)
	case model.PaidWithGateway:
		return s.createWithGateway(ctx, user, room, booking, amount, in)
	default:
		return nil, errs.NewUnprocessableError("Bookings can be paid with credits or pix", nil)
	}
}

// validateSlot checks the requested slot against the hour grid, the booking
// policy and the room's opening hours. now anchors the future and
// advance-limit checks.
func validateSlot(room *model.Room, in BookingInput, policy BookingPolicy, now time.Time) error {
	if in.Hours < minBookingHours || in.Hours > maxBookingHours {
		return errs.NewUnprocessableError(
			fmt.Sprintf("Bookings must be between %d and %d hours", minBookingHours, maxBookingHours), nil)
	}
	if !in.StartsAt.Equal(in.StartsAt.Truncate(time.Hour)) {
		return errs.NewUnprocessableError("Bookings must start exactly on the hour", nil)
	}
	if !in.StartsAt.After(now) {
		return errs.NewUnprocessableError("Bookings must start in the future", nil)
	}
	if in.StartsAt.After(now.AddDate(0, 0, policy.MaxAdvanceDays)) {
		return errs.NewUnprocessableError(
			fmt.Sprintf("Bookings can be made at most %d days in advance", policy.MaxAdvanceDays), nil)
	}

	endsAt := in.StartsAt.Add(time.Duration(in.Hours) * time.Hour)
	if !room.IsOpenBetween(in.StartsAt.In(businessLocation), endsAt.In(businessLocation)) {
		return errs.NewUnprocessableError(
			fmt.Sprintf("%s is open from %dh to %dh", room.Name, room.OpenHour, room.CloseHour), nil)
	}

	return nil
}

// createWithCredits spends ledger hours and confirms in one transaction.
// The user row lock serializes concurrent spends so the balance check
// can't be leapfrogged.
func (s *BookingService) createWithCredits(ctx context.Context, user *model.User, room *model.Room, booking *model.Booking, in BookingInput) (*BookingCheckout, error) {
	if in.CouponCode != "" {
		return nil, errs.NewUnprocessableError("Coupons only apply to payments, not credit bookings", nil)
	}

	booking.Status = model.BookingStatusConfirmed

	created, err := s.insertBooking(ctx, booking, func(tx *repository.Repositories, b *model.Booking) error {
		if err := tx.Users.LockByID(ctx, user.ID); err != nil {
			return err
		}

		balance, err := tx.Credits.Balance(ctx, user.ID)
		if err != nil {
			return err
		}
		if balance < in.Hours {
			return errs.NewUnprocessableError(
				fmt.Sprintf("You need %d credit hours but have %d", in.Hours, balance),
				utils.Ptr("INSUFFICIENT_CREDITS"))
		}

		_, err = tx.Credits.Insert(ctx, &model.CreditEntry{
			UserID:     user.ID,
			DeltaHours: -in.Hours,
			Kind:       model.CreditKindBooking,
			BookingID:  &b.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	created.Room = room

	s.enqueueBookingEmail(ctx, created.ID, func() (*asynq.Task, error) {
		return job.NewBookingConfirmedEmailTask(email.BookingEmailData{
			To:        user.Email,
			Name:      user.Name,
			Reference: created.Reference,
			RoomName:  room.Name,
			StartsAt:  formatBookingTime(created.StartsAt),
			Hours:     created.Hours(),
			Amount:    billing.FormatBRL(created.Amount),
		})
	})

	s.analytics.Track(ctx, analytics.Event{
		Name:    analytics.EventSchedule,
		EventID: fmt.Sprintf("booking-%d", created.ID),
		Email:   user.Email,
	})

	return &BookingCheckout{Booking: created}, nil
}

// createWithGateway holds the slot as pending, redeems the coupon with
// the insert, then charges PIX. A gateway failure rolls the reservation
// back by hand since the charge happens outside the transaction.
func (s *BookingService) createWithGateway(ctx context.Context, user *model.User, room *model.Room, booking *model.Booking, amount decimal.Decimal, in BookingInput) (*BookingCheckout, error) {
	coupon, err := s.coupons.Resolve(ctx, in.CouponCode, amount, model.CouponTargetBookings)
	if err != nil {
		return nil, err
	}

	couponDiscount := decimal.Zero
	if coupon != nil {
		couponDiscount = billing.CouponDiscount(coupon, amount)
	}

	booking.Status = model.BookingStatusPending

	created, err := s.insertBooking(ctx, booking, func(tx *repository.Repositories, b *model.Booking) error {
		if coupon == nil {
			return nil
		}
		ok, err := tx.Coupons.Redeem(ctx, coupon.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.NewUnprocessableError("Coupon usage limit reached", nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.Room = room

	payment, err := s.payments.CreateBookingPayment(ctx, user, created, room.Name, coupon, couponDiscount)
	if err != nil {
		s.rollbackPendingBooking(ctx, created, coupon)
		return nil, err
	}

	s.analytics.Track(ctx, analytics.Event{
		Name:     analytics.EventInitiateCheckout,
		EventID:  fmt.Sprintf("checkout-%d", payment.ID),
		Email:    user.Email,
		Value:    payment.Total,
		Currency: "BRL",
		OrderID:  strconv.FormatInt(payment.ID, 10),
	})

	return &BookingCheckout{Booking: created, Payment: payment}, nil
}

// insertBooking creates the booking row plus whatever extra must commit
// with it, retrying the reference on the (astronomically rare) collision.
// Slot conflicts surface as the exclusion violation and are not retried.
func (s *BookingService) insertBooking(ctx context.Context, booking *model.Booking, extra func(tx *repository.Repositories, b *model.Booking) error) (*model.Booking, error) {
	var created *model.Booking

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		reference, err := utils.NewReference(referenceBytes)
		if err != nil {
			return nil, err
		}
		booking.Reference = reference

		err = s.repos.InTx(ctx, func(tx *repository.Repositories) error {
			b, err := tx.Bookings.Create(ctx, booking)
			if err != nil {
				return err
			}
			created = b
			return extra(tx, b)
		})
		if err != nil {
			if sqlerr.ErrCode(err) == sqlerr.UniqueViolation {
				continue
			}
			return nil, err
		}
		return created, nil
	}

	return nil, errors.New("failed to generate a unique booking reference")
}

// rollbackPendingBooking compensates a failed gateway charge: the slot is
// released and the coupon use returned.
func (s *BookingService) rollbackPendingBooking(ctx context.Context, booking *model.Booking, coupon *model.Coupon) {
	if _, err := s.repos.Bookings.Cancel(ctx, booking.ID, time.Now()); err != nil {
		s.server.Logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to release booking after gateway failure")
	}
	if coupon != nil {
		if err := s.repos.Coupons.Release(ctx, coupon.ID); err != nil {
			s.server.Logger.Warn().Err(err).Int64("coupon_id", coupon.ID).Msg("failed to release coupon after gateway failure")
		}
	}
}

// ListMine returns the user's bookings, upcoming first.
func (s *BookingService) ListMine(ctx context.Context, userID int64, status *model.BookingStatus, p Pagination) ([]*model.Booking, PageInfo, error) {
	limit, offset := p.limitOffset()

	bookings, total, err := s.repos.Bookings.ListByUser(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return bookings, newPageInfo(p, total), nil
}

// GetMine resolves a booking by reference for its owner. Someone else's
// reference 404s the same way an unknown one does.
func (s *BookingService) GetMine(ctx context.Context, user *model.User, reference string) (*BookingDetail, error) {
	booking, err := s.repos.Bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking.UserID != user.ID && !user.IsAdmin() {
		return nil, errs.NewNotFoundError("Booking not found", true, nil)
	}

	detail := &BookingDetail{Booking: booking}
	if booking.PaymentID != nil {
		payment, err := s.repos.Payments.GetByID(ctx, *booking.PaymentID)
		if err != nil {
			return nil, err
		}
		detail.Payment = payment
	}

	return detail, nil
}

// Cancel cancels the user's booking inside the cancellation window.
// Credits bookings restore their hours in the same transaction; a still
// pending payment is cancelled and its coupon released.
func (s *BookingService) Cancel(ctx context.Context, user *model.User, reference string) (*model.Booking, error) {
	booking, err := s.repos.Bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking.UserID != user.ID && !user.IsAdmin() {
		return nil, errs.NewNotFoundError("Booking not found", true, nil)
	}
	if !booking.IsCancellable() {
		return nil, errs.NewUnprocessableError("This booking can no longer be cancelled", nil)
	}

	policy := s.settings.BookingPolicy(ctx)
	deadline := booking.StartsAt.Add(-time.Duration(policy.CancellationWindowHours) * time.Hour)
	if time.Now().After(deadline) {
		return nil, errs.NewUnprocessableError(
			fmt.Sprintf("Bookings can only be cancelled up to %d hours before the start time", policy.CancellationWindowHours),
			utils.Ptr("CANCELLATION_WINDOW_CLOSED"))
	}

	if err := s.cancelAndRestore(ctx, booking); err != nil {
		return nil, err
	}

	s.notifyCancelled(ctx, user, booking)

	return s.repos.Bookings.GetByID(ctx, booking.ID)
}

// cancelAndRestore flips the booking to cancelled and restores spent
// credits atomically, then settles any linked pending payment.
func (s *BookingService) cancelAndRestore(ctx context.Context, booking *model.Booking) error {
	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		ok, err := tx.Bookings.Cancel(ctx, booking.ID, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			return errs.NewConflictError("Booking was updated concurrently, try again", true, nil)
		}

		if booking.PaidWith == model.PaidWithCredits && booking.Status == model.BookingStatusConfirmed {
			_, err = tx.Credits.Insert(ctx, &model.CreditEntry{
				UserID:     booking.UserID,
				DeltaHours: booking.Hours(),
				Kind:       model.CreditKindRefund,
				BookingID:  &booking.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// A pending gateway payment dies with its booking. Approved payments
	// stay; money back goes through the admin refund.
	if booking.PaymentID != nil {
		payment, err := s.repos.Payments.GetByID(ctx, *booking.PaymentID)
		if err != nil {
			return err
		}
		if payment.Status == model.PaymentStatusPending {
			if err := s.payments.applyStatus(ctx, payment, model.PaymentStatusCancelled, nil); err != nil && !errors.Is(err, errStatusRace) {
				return err
			}
		}
	}

	return nil
}

func (s *BookingService) notifyCancelled(ctx context.Context, user *model.User, booking *model.Booking) {
	restored := 0
	if booking.PaidWith == model.PaidWithCredits && booking.Status == model.BookingStatusConfirmed {
		restored = booking.Hours()
	}

	roomName := ""
	if booking.Room != nil {
		roomName = booking.Room.Name
	}

	s.enqueueBookingEmail(ctx, booking.ID, func() (*asynq.Task, error) {
		return job.NewBookingCancelledEmailTask(email.BookingCancelledData{
			To:              user.Email,
			Name:            user.Name,
			Reference:       booking.Reference,
			RoomName:        roomName,
			StartsAt:        formatBookingTime(booking.StartsAt),
			CreditsRestored: restored,
		})
	})
}

func (s *BookingService) enqueueBookingEmail(ctx context.Context, bookingID int64, build func() (*asynq.Task, error)) {
	task, err := build()
	if err == nil {
		err = s.server.Job.Enqueue(ctx, task)
	}
	if err != nil {
		s.server.Logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("failed to enqueue booking email")
	}
}

// List is the admin booking browser.
func (s *BookingService) List(ctx context.Context, filter repository.BookingFilter, p Pagination) ([]*model.Booking, PageInfo, error) {
	limit, offset := p.limitOffset()

	bookings, total, err := s.repos.Bookings.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return bookings, newPageInfo(p, total), nil
}

// AdminSetStatus manually moves a booking: confirm a pending one,
// complete a confirmed one, or cancel with the same credit restoration
// the customer path applies (window checks don't bind admins).
func (s *BookingService) AdminSetStatus(ctx context.Context, actor *model.User, id int64, target model.BookingStatus) (*model.Booking, error) {
	booking, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch target {
	case model.BookingStatusConfirmed:
		ok, err := s.repos.Bookings.Confirm(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.NewUnprocessableError("Only pending bookings can be confirmed", nil)
		}

	case model.BookingStatusCompleted:
		ok, err := s.repos.Bookings.Complete(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.NewUnprocessableError("Only confirmed bookings can be completed", nil)
		}

	case model.BookingStatusCancelled:
		if !booking.IsCancellable() {
			return nil, errs.NewUnprocessableError("This booking can no longer be cancelled", nil)
		}
		if err := s.cancelAndRestore(ctx, booking); err != nil {
			return nil, err
		}
		if owner, err := s.repos.Users.GetByID(ctx, booking.UserID); err == nil {
			s.notifyCancelled(ctx, owner, booking)
		}

	default:
		return nil, errs.NewUnprocessableError("Status must be confirmed, completed or cancelled", nil)
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "booking.status",
		Entity:   "bookings",
		EntityID: &id,
		Metadata: map[string]any{"from": booking.Status, "to": target},
	})

	return s.repos.Bookings.GetByID(ctx, id)
}

// ScheduleDueReminders enqueues reminder emails for confirmed bookings
// starting within the next 24 hours, then stamps them so the hourly sweep
// never reminds twice. Returns how many reminders went out.
func (s *BookingService) ScheduleDueReminders(ctx context.Context) (int, error) {
	now := time.Now()
	due, err := s.repos.Bookings.ListReminderDue(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return 0, err
	}

	sent := make([]int64, 0, len(due))
	for _, contact := range due {
		booking := contact.Booking
		roomName := ""
		if booking.Room != nil {
			roomName = booking.Room.Name
		}

		task, err := job.NewBookingReminderEmailTask(email.BookingEmailData{
			To:        contact.UserEmail,
			Name:      contact.UserName,
			Reference: booking.Reference,
			RoomName:  roomName,
			StartsAt:  formatBookingTime(booking.StartsAt),
			Hours:     booking.Hours(),
			Amount:    billing.FormatBRL(booking.Amount),
		})
		if err == nil {
			err = s.server.Job.Enqueue(ctx, task)
		}
		if err != nil {
			// Unstamped bookings get retried on the next sweep.
			s.server.Logger.Warn().Err(err).Int64("booking_id", booking.ID).Msg("failed to enqueue booking reminder")
			continue
		}

		sent = append(sent, booking.ID)
	}

	if err := s.repos.Bookings.MarkRemindersSent(ctx, sent); err != nil {
		return len(sent), err
	}

	return len(sent), nil
}
