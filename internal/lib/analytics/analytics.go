// Package analytics publishes conversion events to the ads platform's
// Conversions API and, when brokers are configured, mirrors them to a
// Kafka topic for the data pipeline.
//
// Both sinks are best-effort: Track logs failures and never propagates
// them, so a slow or down analytics endpoint cannot affect checkout or
// webhook handling. Emails are SHA-256 hashed (lowercased, trimmed)
// before leaving the process.
package analytics

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/config"
)

// Conversion event names, matching the ads platform's standard events.
const (
	EventPurchase             = "Purchase"
	EventInitiateCheckout     = "InitiateCheckout"
	EventCompleteRegistration = "CompleteRegistration"
	EventSchedule             = "Schedule"
)

// Event is one conversion. EventID doubles as the dedupe key on both
// sinks; Value/Currency only apply to purchase-like events.
type Event struct {
	Name     string
	EventID  string
	Email    string
	Value    decimal.Decimal
	Currency string
	OrderID  string
	Time     time.Time
}

// Publisher fans events out to the configured sinks. A Publisher built
// from a nil/disabled analytics config is a no-op.
type Publisher struct {
	cfg        *config.AnalyticsConfig
	httpClient *http.Client
	writer     *kafka.Writer
	logger     *zerolog.Logger
}

// NewPublisher builds the publisher. The Kafka writer is only created
// when brokers are configured; the CAPI sink only needs the HTTP config.
func NewPublisher(cfg *config.Config, logger *zerolog.Logger) *Publisher {
	p := &Publisher{
		cfg:        cfg.Analytics,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}

	if p.Enabled() && len(cfg.Analytics.KafkaBrokers) > 0 {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Analytics.KafkaBrokers...),
			Topic:        cfg.Analytics.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		}
	}

	return p
}

// Enabled reports whether events will actually be sent anywhere.
func (p *Publisher) Enabled() bool {
	return p.cfg != nil && p.cfg.Enabled
}

// Track publishes one event to every configured sink. Safe to call from a
// goroutine: it detaches from the caller's cancellation and bounds its own
// runtime, and it never returns an error.
func (p *Publisher) Track(ctx context.Context, event Event) {
	if !p.Enabled() {
		return
	}

	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.sendConversion(ctx, event); err != nil {
		p.logger.Warn().
			Str("event", event.Name).
			Err(err).
			Msg("failed to publish conversion event")
	}

	if p.writer != nil {
		if err := p.mirrorToKafka(ctx, event); err != nil {
			p.logger.Warn().
				Str("event", event.Name).
				Err(err).
				Msg("failed to mirror event to kafka")
		}
	}
}

// Close flushes and closes the Kafka writer, if any.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// hashEmail normalizes (trim, lowercase) and SHA-256 hashes an email, per
// the Conversions API user-data rules.
func hashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type capiUserData struct {
	Em []string `json:"em,omitempty"`
}

type capiCustomData struct {
	Currency string  `json:"currency,omitempty"`
	Value    float64 `json:"value,omitempty"`
	OrderID  string  `json:"order_id,omitempty"`
}

type capiEvent struct {
	EventName    string          `json:"event_name"`
	EventTime    int64           `json:"event_time"`
	EventID      string          `json:"event_id,omitempty"`
	ActionSource string          `json:"action_source"`
	UserData     capiUserData    `json:"user_data"`
	CustomData   *capiCustomData `json:"custom_data,omitempty"`
}

type capiRequest struct {
	Data []capiEvent `json:"data"`
}

func (p *Publisher) sendConversion(ctx context.Context, event Event) error {
	payload := capiEvent{
		EventName:    event.Name,
		EventTime:    event.Time.Unix(),
		EventID:      event.EventID,
		ActionSource: "website",
	}

	if hashed := hashEmail(event.Email); hashed != "" {
		payload.UserData.Em = []string{hashed}
	}

	if !event.Value.IsZero() {
		payload.CustomData = &capiCustomData{
			Currency: event.Currency,
			Value:    event.Value.InexactFloat64(),
			OrderID:  event.OrderID,
		}
	}

	body, err := json.Marshal(capiRequest{Data: []capiEvent{payload}})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/events?access_token=%s",
		strings.TrimRight(p.cfg.EndpointURL, "/"), p.cfg.PixelID, p.cfg.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("conversions api returned %d", resp.StatusCode)
	}
	return nil
}

// streamEvent is the Kafka wire shape. The raw email never goes to the
// topic, only its hash.
type streamEvent struct {
	Name      string    `json:"name"`
	EventID   string    `json:"event_id"`
	EmailHash string    `json:"email_hash,omitempty"`
	Value     string    `json:"value,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
	Time      time.Time `json:"time"`
}

func (p *Publisher) mirrorToKafka(ctx context.Context, event Event) error {
	wire := streamEvent{
		Name:      event.Name,
		EventID:   event.EventID,
		EmailHash: hashEmail(event.Email),
		Currency:  event.Currency,
		OrderID:   event.OrderID,
		Time:      event.Time,
	}
	if !event.Value.IsZero() {
		wire.Value = event.Value.StringFixed(2)
	}

	serialized, err := json.Marshal(wire)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EventID),
		Value: serialized,
	})
}
