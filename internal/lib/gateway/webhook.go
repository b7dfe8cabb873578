package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body on
// webhook deliveries.
const SignatureHeader = "X-Webhook-Signature"

// Webhook event types the processor delivers.
const (
	EventPaymentApproved = "payment.approved"
	EventPaymentDeclined = "payment.declined"
	EventPaymentExpired  = "payment.expired"
	EventPaymentRefunded = "payment.refunded"
)

// WebhookEvent is one processor delivery. ID is the delivery id used for
// idempotent storage, Data.PaymentID ties it back to our payment row.
type WebhookEvent struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	CreatedAt time.Time          `json:"created_at"`
	Data      WebhookPaymentData `json:"data"`
}

// WebhookPaymentData is the payment snapshot inside an event.
type WebhookPaymentData struct {
	PaymentID string     `json:"payment_id"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// ParseWebhookEvent decodes a raw webhook body. Signature verification
// must happen first, on the raw bytes.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.Wrap(err, "failed to parse webhook event")
	}
	if event.ID == "" || event.Type == "" {
		return nil, errors.New("webhook event missing id or type")
	}
	return &event, nil
}

// SignBody computes the hex HMAC-SHA256 signature the processor sends in
// X-Webhook-Signature. Exported for tests and local tooling.
func SignBody(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the HMAC-SHA256 of
// body under secret. The comparison is constant-time; hex decoding
// accepts both case variants.
func VerifySignature(secret, body []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(expected, mac.Sum(nil))
}
