package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/billing"
	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/lib/analytics"
	"github.com/salaviva/backend/internal/lib/email"
	"github.com/salaviva/backend/internal/lib/gateway"
	"github.com/salaviva/backend/internal/lib/job"
	"github.com/salaviva/backend/internal/lib/utils"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// Webhook processing outcomes, returned to the gateway as
// {"status": ...}.
const (
	WebhookOutcomeProcessed        = "processed"
	WebhookOutcomeSkipped          = "skipped"
	WebhookOutcomeAlreadyProcessed = "already_processed"
)

// errStatusRace signals that a concurrent update won the payment status
// CAS. Callers treat it as "nothing to do", never as a failure.
var errStatusRace = errors.New("payment status changed concurrently")

// PaymentService drives checkout against the gateway, settles payments
// from webhooks and sweeps, and owns refunds. Every status change funnels
// through applyStatus so the database-side effects (booking confirmation,
// credit grants, coupon releases) stay consistent no matter which path
// delivered the news.
type PaymentService struct {
	server    *server.Server
	repos     *repository.Repositories
	gateway   *gateway.Client
	settings  *SettingsService
	coupons   *CouponService
	audit     *AuditService
	analytics *analytics.Publisher
}

func NewPaymentService(
	s *server.Server,
	repos *repository.Repositories,
	gw *gateway.Client,
	settings *SettingsService,
	coupons *CouponService,
	audit *AuditService,
	publisher *analytics.Publisher,
) *PaymentService {
	return &PaymentService{
		server:    s,
		repos:     repos,
		gateway:   gw,
		settings:  settings,
		coupons:   coupons,
		audit:     audit,
		analytics: publisher,
	}
}

// ProductCheckoutInput is a credit-package purchase request.
type ProductCheckoutInput struct {
	ProductID    int64
	Method       model.PaymentMethod
	CouponCode   string
	Installments int
	CardToken    string
}

// PaymentCheckout is the checkout response: the created payment plus, for
// card purchases, the installment schedule.
type PaymentCheckout struct {
	Payment *model.Payment `json:"payment"`
	Plan    *billing.Plan  `json:"plan,omitempty"`
}

// CheckoutProduct charges a credit package. PIX gets the configured
// discount on top of any coupon; card splits into installments with
// interest above the interest-free count. Credits are only granted when
// the payment is approved (synchronously for some card charges, via
// webhook otherwise).
func (s *PaymentService) CheckoutProduct(ctx context.Context, user *model.User, in ProductCheckoutInput) (*PaymentCheckout, error) {
	product, err := s.repos.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, errs.NewUnprocessableError("This package is not available", nil)
	}

	policy := s.settings.PaymentPolicy(ctx)
	amount := billing.Round2(product.Price)

	coupon, err := s.coupons.Resolve(ctx, in.CouponCode, amount, model.CouponTargetProducts)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = billing.CouponDiscount(coupon, amount)
	}

	payment := &model.Payment{
		UserID:       user.ID,
		Kind:         model.PaymentKindProduct,
		ProductID:    &product.ID,
		Status:       model.PaymentStatusPending,
		Method:       in.Method,
		Amount:       amount,
		Installments: 1,
		Gateway:      s.gateway.Provider(),
	}
	if coupon != nil {
		payment.CouponID = &coupon.ID
	}

	var plan *billing.Plan
	switch in.Method {
	case model.PaymentMethodPix:
		// The PIX discount stacks after the coupon, matching the price the
		// customer saw on the checkout screen.
		discount = discount.Add(billing.PixDiscount(billing.ApplyDiscount(amount, discount), policy.PixDiscountPercent))
		payment.Discount = discount
		payment.Total = billing.ApplyDiscount(amount, discount)
	case model.PaymentMethodCard:
		if in.CardToken == "" {
			return nil, errs.NewUnprocessableError("Card payments need a card token", nil)
		}
		if in.Installments < 1 || in.Installments > policy.MaxInstallments {
			return nil, errs.NewUnprocessableError(
				fmt.Sprintf("Installments must be between 1 and %d", policy.MaxInstallments), nil)
		}

		p := billing.BuildPlan(billing.ApplyDiscount(amount, discount), in.Installments, policy.InterestFreeInstallments, policy.InstallmentInterestPercent)
		plan = &p
		payment.Discount = discount
		payment.Total = p.Total
		payment.Installments = p.Installments
	default:
		return nil, errs.NewUnprocessableError("Payment method must be pix or card", nil)
	}

	if coupon != nil {
		ok, err := s.repos.Coupons.Redeem(ctx, coupon.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errs.NewUnprocessableError("Coupon usage limit reached", nil)
		}
	}

	payment, err = s.chargeAndStore(ctx, user, payment, product.Name, in.CardToken, policy)
	if err != nil {
		if coupon != nil {
			s.releaseCoupon(ctx, coupon.ID)
		}
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

	return &PaymentCheckout{Payment: payment, Plan: plan}, nil
}

// chargeAndStore calls the gateway for the prepared payment, persists the
// row and applies a synchronous card outcome when there is one.
func (s *PaymentService) chargeAndStore(ctx context.Context, user *model.User, payment *model.Payment, description, cardToken string, policy PaymentPolicy) (*model.Payment, error) {
	var syncStatus string

	switch payment.Method {
	case model.PaymentMethodPix:
		pix, err := s.gateway.CreatePIXPayment(ctx, gateway.PIXPaymentRequest{
			Amount:           billing.Cents(payment.Total),
			Description:      description,
			CustomerName:     user.Name,
			CustomerEmail:    user.Email,
			CustomerDocument: customerDocument(user),
			ExpiresIn:        policy.ExpiryMinutes * 60,
			Reference:        description,
		})
		if err != nil {
			return nil, err
		}

		payment.GatewayID = pix.ID
		payment.PixQRCode = utils.Ptr(pix.QRCode)
		payment.PixCopyPaste = utils.Ptr(pix.CopyPaste)
		expiresAt := pix.ExpiresAt
		if expiresAt.IsZero() {
			expiresAt = time.Now().Add(time.Duration(policy.ExpiryMinutes) * time.Minute)
		}
		payment.ExpiresAt = &expiresAt

	case model.PaymentMethodCard:
		card, err := s.gateway.CreateCardPayment(ctx, gateway.CardPaymentRequest{
			Amount:           billing.Cents(payment.Total),
			Installments:     payment.Installments,
			CardToken:        cardToken,
			Description:      description,
			CustomerName:     user.Name,
			CustomerEmail:    user.Email,
			CustomerDocument: customerDocument(user),
			Reference:        description,
		})
		if err != nil {
			return nil, err
		}

		payment.GatewayID = card.ID
		if card.Brand != "" {
			payment.CardBrand = utils.Ptr(card.Brand)
		}
		if card.Last4 != "" {
			payment.CardLast4 = utils.Ptr(card.Last4)
		}
		syncStatus = card.Status
	}

	created, err := s.repos.Payments.Create(ctx, payment)
	if err != nil {
		s.server.Logger.Error().
			Err(err).
			Str("gateway_id", payment.GatewayID).
			Msg("gateway charge created but payment row insert failed")
		return nil, err
	}

	// Some card charges settle on the synchronous response; apply that
	// outcome now instead of waiting for the webhook to repeat it.
	if target, ok := mapGatewayStatus(syncStatus); ok && created.Status.CanTransitionTo(target) {
		if err := s.applyStatus(ctx, created, target, nil); err != nil && !errors.Is(err, errStatusRace) {
			return nil, err
		}
		return s.repos.Payments.GetByID(ctx, created.ID)
	}

	return created, nil
}

// CreateBookingPayment charges a PIX payment for a pending booking. The
// booking and its coupon redemption are already committed; the caller
// compensates (cancels the booking, releases the coupon) if this fails.
// couponDiscount is the coupon's cut alone; the PIX discount stacks on
// top here, same as product checkout.
func (s *PaymentService) CreateBookingPayment(ctx context.Context, user *model.User, booking *model.Booking, roomName string, coupon *model.Coupon, couponDiscount decimal.Decimal) (*model.Payment, error) {
	policy := s.settings.PaymentPolicy(ctx)
	description := fmt.Sprintf("Reserva %s (%s)", roomName, booking.Reference)

	discount := couponDiscount.Add(billing.PixDiscount(billing.ApplyDiscount(booking.Amount, couponDiscount), policy.PixDiscountPercent))

	payment := &model.Payment{
		UserID:       user.ID,
		Kind:         model.PaymentKindBooking,
		BookingID:    &booking.ID,
		Status:       model.PaymentStatusPending,
		Method:       model.PaymentMethodPix,
		Amount:       booking.Amount,
		Discount:     discount,
		Total:        billing.ApplyDiscount(booking.Amount, discount),
		Installments: 1,
		Gateway:      s.gateway.Provider(),
	}
	if coupon != nil {
		payment.CouponID = &coupon.ID
	}

	pix, err := s.gateway.CreatePIXPayment(ctx, gateway.PIXPaymentRequest{
		Amount:           billing.Cents(payment.Total),
		Description:      description,
		CustomerName:     user.Name,
		CustomerEmail:    user.Email,
		CustomerDocument: customerDocument(user),
		ExpiresIn:        policy.ExpiryMinutes * 60,
		Reference:        booking.Reference,
	})
	if err != nil {
		return nil, err
	}

	payment.GatewayID = pix.ID
	payment.PixQRCode = utils.Ptr(pix.QRCode)
	payment.PixCopyPaste = utils.Ptr(pix.CopyPaste)
	expiresAt := pix.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Duration(policy.ExpiryMinutes) * time.Minute)
	}
	payment.ExpiresAt = &expiresAt

	created, err := s.repos.Payments.Create(ctx, payment)
	if err != nil {
		s.server.Logger.Error().
			Err(err).
			Str("gateway_id", payment.GatewayID).
			Msg("gateway charge created but payment row insert failed")
		return nil, err
	}

	if err := s.repos.Bookings.SetPaymentID(ctx, booking.ID, created.ID); err != nil {
		return nil, err
	}

	return created, nil
}

// ProcessWebhook handles one gateway delivery. The raw body is verified
// (constant-time HMAC) before parsing; the (provider, event_id) insert is
// the idempotency barrier. The returned outcome string is echoed to the
// gateway; a non-nil error means the delivery should be retried (500).
func (s *PaymentService) ProcessWebhook(ctx context.Context, body []byte, signature string) (string, error) {
	if !gateway.VerifySignature([]byte(s.server.Config.Gateway.WebhookSecret), body, signature) {
		return "", errs.NewUnauthorizedError("Invalid webhook signature", true)
	}

	event, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		return "", errs.NewBadRequestError("Malformed webhook payload", true, nil, nil, nil)
	}

	stored, inserted, err := s.repos.WebhookEvents.Insert(ctx, &model.WebhookEvent{
		Provider:  s.gateway.Provider(),
		EventID:   event.ID,
		EventType: event.Type,
		Payload:   body,
		Status:    model.WebhookStatusReceived,
	})
	if err != nil {
		return "", err
	}
	if !inserted {
		return WebhookOutcomeAlreadyProcessed, nil
	}

	target, known := statusForEvent(event.Type)
	if !known {
		s.skipWebhook(ctx, stored.ID, fmt.Sprintf("unhandled event type %s", event.Type))
		return WebhookOutcomeSkipped, nil
	}

	payment, err := s.repos.Payments.GetByGatewayID(ctx, s.gateway.Provider(), event.Data.PaymentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.server.Logger.Warn().
				Str("gateway_id", event.Data.PaymentID).
				Str("event_id", event.ID).
				Msg("webhook for unknown payment")
			s.skipWebhook(ctx, stored.ID, "unknown payment")
			return WebhookOutcomeSkipped, nil
		}
		s.failWebhook(ctx, stored.ID, err)
		return "", err
	}

	if !payment.Status.CanTransitionTo(target) {
		s.skipWebhook(ctx, stored.ID, fmt.Sprintf("stale transition %s -> %s", payment.Status, target))
		return WebhookOutcomeSkipped, nil
	}

	err = s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := s.applyStatusTx(ctx, tx, payment, target, event.Data.PaidAt); err != nil {
			return err
		}
		return tx.WebhookEvents.SetStatus(ctx, stored.ID, model.WebhookStatusProcessed, nil)
	})
	if err != nil {
		if errors.Is(err, errStatusRace) {
			s.skipWebhook(ctx, stored.ID, "lost status race")
			return WebhookOutcomeSkipped, nil
		}
		s.failWebhook(ctx, stored.ID, err)
		return "", err
	}

	s.afterStatusChange(ctx, payment, target)

	return WebhookOutcomeProcessed, nil
}

func (s *PaymentService) skipWebhook(ctx context.Context, eventID int64, reason string) {
	if err := s.repos.WebhookEvents.SetStatus(ctx, eventID, model.WebhookStatusSkipped, &reason); err != nil {
		s.server.Logger.Warn().Err(err).Int64("webhook_event_id", eventID).Msg("failed to mark webhook event skipped")
	}
}

func (s *PaymentService) failWebhook(ctx context.Context, eventID int64, cause error) {
	message := cause.Error()
	if err := s.repos.WebhookEvents.SetStatus(ctx, eventID, model.WebhookStatusFailed, &message); err != nil {
		s.server.Logger.Warn().Err(err).Int64("webhook_event_id", eventID).Msg("failed to mark webhook event failed")
	}
}

// applyStatus wraps applyStatusTx in its own transaction and fires the
// post-commit side effects. Sweeps, synchronous card outcomes and refunds
// use it; the webhook path composes the transaction itself so the event
// row commits atomically with the payment.
func (s *PaymentService) applyStatus(ctx context.Context, payment *model.Payment, target model.PaymentStatus, paidAt *time.Time) error {
	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		return s.applyStatusTx(ctx, tx, payment, target, paidAt)
	})
	if err != nil {
		return err
	}

	s.afterStatusChange(ctx, payment, target)
	return nil
}

// applyStatusTx performs the database side of a payment status change:
// CAS the payment row from its loaded status, then the kind-specific
// bookkeeping. Everything happens inside the caller's transaction so a
// failure rolls the whole change back.
func (s *PaymentService) applyStatusTx(ctx context.Context, tx *repository.Repositories, payment *model.Payment, target model.PaymentStatus, paidAt *time.Time) error {
	if target == model.PaymentStatusApproved && paidAt == nil {
		paidAt = utils.Ptr(time.Now())
	}

	ok, err := tx.Payments.UpdateStatus(ctx, payment.ID, payment.Status, target, paidAt)
	if err != nil {
		return err
	}
	if !ok {
		return errStatusRace
	}

	switch target {
	case model.PaymentStatusApproved:
		if payment.Kind == model.PaymentKindBooking && payment.BookingID != nil {
			confirmed, err := tx.Bookings.Confirm(ctx, *payment.BookingID)
			if err != nil {
				return err
			}
			if !confirmed {
				// The customer cancelled the pending booking before paying.
				// Keep the money recorded; support refunds it manually.
				s.server.Logger.Warn().
					Int64("payment_id", payment.ID).
					Int64("booking_id", *payment.BookingID).
					Msg("approved payment for a booking that is no longer pending")
			}
		}
		if payment.Kind == model.PaymentKindProduct && payment.ProductID != nil {
			product, err := tx.Products.GetByID(ctx, *payment.ProductID)
			if err != nil {
				return err
			}
			_, err = tx.Credits.Insert(ctx, &model.CreditEntry{
				UserID:     payment.UserID,
				DeltaHours: product.CreditHours,
				Kind:       model.CreditKindPurchase,
				PaymentID:  &payment.ID,
				ProductID:  &product.ID,
			})
			if err != nil {
				return err
			}
		}

	case model.PaymentStatusDeclined, model.PaymentStatusExpired, model.PaymentStatusCancelled:
		if payment.CouponID != nil {
			if err := tx.Coupons.Release(ctx, *payment.CouponID); err != nil {
				return err
			}
		}
		if payment.Kind == model.PaymentKindBooking && payment.BookingID != nil {
			// Releases the slot. No credit refund: nothing was charged.
			if _, err := tx.Bookings.Cancel(ctx, *payment.BookingID, time.Now()); err != nil {
				return err
			}
		}

	case model.PaymentStatusRefunded:
		if payment.Kind == model.PaymentKindProduct && payment.ProductID != nil {
			product, err := tx.Products.GetByID(ctx, *payment.ProductID)
			if err != nil {
				return err
			}
			// Claw the purchased hours back. The balance may go negative if
			// they were already spent; that debt is visible in the ledger.
			_, err = tx.Credits.Insert(ctx, &model.CreditEntry{
				UserID:     payment.UserID,
				DeltaHours: -product.CreditHours,
				Kind:       model.CreditKindRefund,
				PaymentID:  &payment.ID,
				ProductID:  &product.ID,
			})
			if err != nil {
				return err
			}
		}
		if payment.Kind == model.PaymentKindBooking && payment.BookingID != nil {
			if _, err := tx.Bookings.Cancel(ctx, *payment.BookingID, time.Now()); err != nil {
				return err
			}
		}
	}

	return nil
}

// afterStatusChange runs the best-effort side effects of a committed
// status change: receipt and fulfillment emails plus the conversion
// event. Failures are logged, never propagated; the money is already
// settled.
func (s *PaymentService) afterStatusChange(ctx context.Context, payment *model.Payment, target model.PaymentStatus) {
	if target != model.PaymentStatusApproved {
		return
	}

	user, err := s.repos.Users.GetByID(ctx, payment.UserID)
	if err != nil {
		s.server.Logger.Warn().Err(err).Int64("payment_id", payment.ID).Msg("failed to load user for payment notifications")
		return
	}

	switch payment.Kind {
	case model.PaymentKindProduct:
		if payment.ProductID == nil {
			break
		}
		product, err := s.repos.Products.GetByID(ctx, *payment.ProductID)
		if err != nil {
			s.server.Logger.Warn().Err(err).Int64("payment_id", payment.ID).Msg("failed to load product for payment notifications")
			break
		}

		s.enqueueEmail(ctx, payment.ID, func() (*asynq.Task, error) {
			return job.NewCreditsPurchasedEmailTask(email.CreditsPurchasedData{
				To:          user.Email,
				Name:        user.Name,
				Hours:       product.CreditHours,
				ProductName: product.Name,
				Total:       billing.FormatBRL(payment.Total),
			})
		})
		s.enqueueEmail(ctx, payment.ID, func() (*asynq.Task, error) {
			return job.NewPaymentApprovedEmailTask(email.PaymentApprovedData{
				To:          user.Email,
				Name:        user.Name,
				Description: product.Name,
				Total:       billing.FormatBRL(payment.Total),
				Method:      string(payment.Method),
			})
		})

	case model.PaymentKindBooking:
		if payment.BookingID == nil {
			break
		}
		booking, err := s.repos.Bookings.GetByID(ctx, *payment.BookingID)
		if err != nil {
			s.server.Logger.Warn().Err(err).Int64("payment_id", payment.ID).Msg("failed to load booking for payment notifications")
			break
		}

		roomName := ""
		if booking.Room != nil {
			roomName = booking.Room.Name
		}
		s.enqueueEmail(ctx, payment.ID, func() (*asynq.Task, error) {
			return job.NewBookingConfirmedEmailTask(email.BookingEmailData{
				To:        user.Email,
				Name:      user.Name,
				Reference: booking.Reference,
				RoomName:  roomName,
				StartsAt:  formatBookingTime(booking.StartsAt),
				Hours:     booking.Hours(),
				Amount:    billing.FormatBRL(payment.Total),
			})
		})
	}

	s.analytics.Track(ctx, analytics.Event{
		Name:     analytics.EventPurchase,
		EventID:  fmt.Sprintf("purchase-%d", payment.ID),
		Email:    user.Email,
		Value:    payment.Total,
		Currency: "BRL",
		OrderID:  strconv.FormatInt(payment.ID, 10),
	})
}

func (s *PaymentService) enqueueEmail(ctx context.Context, paymentID int64, build func() (*asynq.Task, error)) {
	task, err := build()
	if err == nil {
		err = s.server.Job.Enqueue(ctx, task)
	}
	if err != nil {
		s.server.Logger.Warn().Err(err).Int64("payment_id", paymentID).Msg("failed to enqueue payment email")
	}
}

func (s *PaymentService) releaseCoupon(ctx context.Context, couponID int64) {
	if err := s.repos.Coupons.Release(ctx, couponID); err != nil {
		s.server.Logger.Warn().Err(err).Int64("coupon_id", couponID).Msg("failed to release coupon")
	}
}

// ExpirePending marks pending payments past their expiry as expired,
// releasing their coupons and pending bookings. Runs from the worker
// every few minutes; returns how many payments it expired.
func (s *PaymentService) ExpirePending(ctx context.Context) (int, error) {
	payments, err := s.repos.Payments.ListPendingExpired(ctx, time.Now(), 100)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, payment := range payments {
		if err := s.applyStatus(ctx, payment, model.PaymentStatusExpired, nil); err != nil {
			if errors.Is(err, errStatusRace) {
				continue
			}
			return expired, err
		}
		expired++
	}

	return expired, nil
}

// SyncPending re-queries the gateway for pending payments old enough that
// a webhook should have arrived, and applies whatever the gateway says.
// Covers lost webhook deliveries; returns how many payments moved.
func (s *PaymentService) SyncPending(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-5 * time.Minute)
	payments, err := s.repos.Payments.ListPendingForSync(ctx, cutoff, 100)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, payment := range payments {
		remote, err := s.gateway.GetPayment(ctx, payment.GatewayID)
		if err != nil {
			if gateway.IsNotFound(err) {
				s.server.Logger.Warn().
					Int64("payment_id", payment.ID).
					Str("gateway_id", payment.GatewayID).
					Msg("pending payment unknown to gateway")
				continue
			}
			return synced, err
		}

		target, ok := mapGatewayStatus(remote.Status)
		if !ok || !payment.Status.CanTransitionTo(target) {
			continue
		}

		if err := s.applyStatus(ctx, payment, target, remote.PaidAt); err != nil {
			if errors.Is(err, errStatusRace) {
				continue
			}
			return synced, err
		}
		synced++
	}

	return synced, nil
}

// Refund refunds an approved payment at the gateway and applies the
// refunded status, including the credit claw-back for product payments.
func (s *PaymentService) Refund(ctx context.Context, actor *model.User, id int64) (*model.Payment, error) {
	payment, err := s.repos.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.PaymentStatusApproved {
		return nil, errs.NewUnprocessableError("Only approved payments can be refunded", nil)
	}

	if _, err := s.gateway.RefundPayment(ctx, payment.GatewayID); err != nil {
		return nil, err
	}

	if err := s.applyStatus(ctx, payment, model.PaymentStatusRefunded, nil); err != nil && !errors.Is(err, errStatusRace) {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "payment.refund",
		Entity:   "payments",
		EntityID: &payment.ID,
		Metadata: map[string]any{"gateway_id": payment.GatewayID, "total": payment.Total.String()},
	})

	return s.repos.Payments.GetByID(ctx, payment.ID)
}

// GetOwned returns a payment only to its owner (or an admin); anyone else
// gets the same 404 a nonexistent id would.
func (s *PaymentService) GetOwned(ctx context.Context, user *model.User, id int64) (*model.Payment, error) {
	payment, err := s.repos.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.UserID != user.ID && !user.IsAdmin() {
		return nil, errs.NewNotFoundError("Payment not found", true, nil)
	}
	return payment, nil
}

func (s *PaymentService) ListMine(ctx context.Context, userID int64, p Pagination) ([]*model.Payment, PageInfo, error) {
	limit, offset := p.limitOffset()

	payments, total, err := s.repos.Payments.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return payments, newPageInfo(p, total), nil
}

func (s *PaymentService) List(ctx context.Context, filter repository.PaymentFilter, p Pagination) ([]*model.Payment, PageInfo, error) {
	limit, offset := p.limitOffset()

	payments, total, err := s.repos.Payments.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return payments, newPageInfo(p, total), nil
}

func (s *PaymentService) Get(ctx context.Context, id int64) (*model.Payment, error) {
	return s.repos.Payments.GetByID(ctx, id)
}

// ExportCSV renders the accounting export for payments created within
// [from, to). Amounts come out BRL-formatted and timestamps in business
// local time, the shape the finance spreadsheet expects.
func (s *PaymentService) ExportCSV(ctx context.Context, from, to time.Time) ([]byte, error) {
	rows, err := s.repos.Payments.ListForExport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "created_at", "customer_email", "kind", "method", "status", "installments", "coupon_code", "discount", "total"}
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "failed to write export header")
	}

	for _, row := range rows {
		p := row.Payment

		coupon := ""
		if row.CouponCode != nil {
			coupon = *row.CouponCode
		}

		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.CreatedAt.In(businessLocation).Format("02/01/2006 15:04"),
			row.UserEmail,
			string(p.Kind),
			string(p.Method),
			string(p.Status),
			strconv.Itoa(p.Installments),
			coupon,
			billing.FormatBRL(p.Discount),
			billing.FormatBRL(p.Total),
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write export row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush export")
	}

	return buf.Bytes(), nil
}

// mapGatewayStatus translates a gateway payment status into ours. Pending
// and unknown statuses map to nothing to apply.
func mapGatewayStatus(status string) (model.PaymentStatus, bool) {
	switch status {
	case gateway.StatusApproved:
		return model.PaymentStatusApproved, true
	case gateway.StatusDeclined:
		return model.PaymentStatusDeclined, true
	case gateway.StatusExpired:
		return model.PaymentStatusExpired, true
	case gateway.StatusRefunded:
		return model.PaymentStatusRefunded, true
	case gateway.StatusCancelled:
		return model.PaymentStatusCancelled, true
	default:
		return "", false
	}
}

// statusForEvent translates a webhook event type into the target payment
// status.
func statusForEvent(eventType string) (model.PaymentStatus, bool) {
	switch eventType {
	case gateway.EventPaymentApproved:
		return model.PaymentStatusApproved, true
	case gateway.EventPaymentDeclined:
		return model.PaymentStatusDeclined, true
	case gateway.EventPaymentExpired:
		return model.PaymentStatusExpired, true
	case gateway.EventPaymentRefunded:
		return model.PaymentStatusRefunded, true
	default:
		return "", false
	}
}

func customerDocument(user *model.User) string {
	if user.CPF != nil {
		return *user.CPF
	}
	return ""
}
