package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/salaviva/backend/internal/lib/email"
)

// Task type names stored in Redis. Asynq routes on these strings.
const (
	TaskWelcomeEmail          = "email:welcome"
	TaskBookingConfirmedEmail = "email:booking_confirmed"
	TaskBookingCancelledEmail = "email:booking_cancelled"
	TaskBookingReminderEmail  = "email:booking_reminder"
	TaskPaymentApprovedEmail  = "email:payment_approved"
	TaskCreditsPurchasedEmail = "email:credits_purchased"

	TaskPaymentExpire    = "payment:expire"
	TaskPaymentSync      = "payment:sync"
	TaskBookingReminders = "booking:reminders"
)

const emailTaskTimeout = 30 * time.Second

// emailTask serializes payload and applies the shared email task options:
// 3 retries, 30s timeout, the given queue.
func emailTask(taskType string, payload any, queue string) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		taskType,
		data,
		asynq.MaxRetry(3),
		asynq.Queue(queue),
		asynq.Timeout(emailTaskTimeout),
	), nil
}

// WelcomeEmailPayload is the payload for the welcome email task.
type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewWelcomeEmailTask builds the welcome email task. Welcome emails are
// nice-to-have, so they ride the low queue.
func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	return emailTask(TaskWelcomeEmail, WelcomeEmailPayload{To: to, Name: name}, QueueLow)
}

// Booking email payloads reuse the display structs from the email
// package; formatting (dates, BRL amounts) happens at enqueue time so
// handlers stay database-free.

// NewBookingConfirmedEmailTask builds the booking confirmation task.
func NewBookingConfirmedEmailTask(data email.BookingEmailData) (*asynq.Task, error) {
	return emailTask(TaskBookingConfirmedEmail, data, QueueDefault)
}

// NewBookingCancelledEmailTask builds the booking cancellation task.
func NewBookingCancelledEmailTask(data email.BookingCancelledData) (*asynq.Task, error) {
	return emailTask(TaskBookingCancelledEmail, data, QueueDefault)
}

// NewBookingReminderEmailTask builds the booking reminder task.
func NewBookingReminderEmailTask(data email.BookingEmailData) (*asynq.Task, error) {
	return emailTask(TaskBookingReminderEmail, data, QueueDefault)
}

// NewPaymentApprovedEmailTask builds the payment receipt task. Receipts
// are what customers wait for after paying, so they go out critical.
func NewPaymentApprovedEmailTask(data email.PaymentApprovedData) (*asynq.Task, error) {
	return emailTask(TaskPaymentApprovedEmail, data, QueueCritical)
}

// NewCreditsPurchasedEmailTask builds the credits-granted task.
func NewCreditsPurchasedEmailTask(data email.CreditsPurchasedData) (*asynq.Task, error) {
	return emailTask(TaskCreditsPurchasedEmail, data, QueueCritical)
}

// Maintenance tasks carry no payload; their handlers scan the database
// for work. Retries are pointless since cron re-enqueues them anyway.

// NewPaymentExpireTask builds the pending-payment expiry sweep.
func NewPaymentExpireTask() *asynq.Task {
	return asynq.NewTask(
		TaskPaymentExpire,
		nil,
		asynq.MaxRetry(0),
		asynq.Queue(QueueCritical),
		asynq.Timeout(2*time.Minute),
	)
}

// NewPaymentSyncTask builds the gateway reconciliation sweep for pending
// payments whose webhook may have been missed.
func NewPaymentSyncTask() *asynq.Task {
	return asynq.NewTask(
		TaskPaymentSync,
		nil,
		asynq.MaxRetry(0),
		asynq.Queue(QueueDefault),
		asynq.Timeout(2*time.Minute),
	)
}

// NewBookingRemindersTask builds the reminder scheduling sweep.
func NewBookingRemindersTask() *asynq.Task {
	return asynq.NewTask(
		TaskBookingReminders,
		nil,
		asynq.MaxRetry(0),
		asynq.Queue(QueueLow),
		asynq.Timeout(2*time.Minute),
	)
}
