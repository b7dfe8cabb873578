package model

import "time"

type WebhookStatus string

const (
	// WebhookStatusReceived is the insert-time status before processing.
	WebhookStatusReceived WebhookStatus = "received"
	// WebhookStatusProcessed means the event updated a payment.
	WebhookStatusProcessed WebhookStatus = "processed"
	// WebhookStatusSkipped means the event was valid but changed nothing
	// (unknown payment, stale transition, unhandled type).
	WebhookStatusSkipped WebhookStatus = "skipped"
	// WebhookStatusFailed means processing errored; the gateway will retry.
	WebhookStatusFailed WebhookStatus = "failed"
)

// WebhookEvent stores every gateway delivery exactly once. The
// (provider, event_id) unique constraint is the idempotency barrier:
// duplicate deliveries fail the insert, get acknowledged, and are never
// reprocessed. Payload keeps the raw JSON for audits and replay debugging.
type WebhookEvent struct {
	ID          int64         `json:"id"`
	Provider    string        `json:"provider"`
	EventID     string        `json:"event_id"`
	EventType   string        `json:"event_type"`
	Payload     []byte        `json:"payload"`
	Status      WebhookStatus `json:"status"`
	Error       *string       `json:"error,omitempty"`
	ReceivedAt  time.Time     `json:"received_at"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
}
