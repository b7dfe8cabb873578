package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

// WebhookEventsRepository stores gateway deliveries. The
// (provider, event_id) unique constraint makes Insert the idempotency
// gate for webhook processing.
type WebhookEventsRepository struct {
	db Querier
}

const webhookEventColumns = `id, provider, event_id, event_type, payload, status, error, received_at, processed_at`

func scanWebhookEvent(s scanner) (*model.WebhookEvent, error) {
	var e model.WebhookEvent
	err := s.Scan(
		&e.ID,
		&e.Provider,
		&e.EventID,
		&e.EventType,
		&e.Payload,
		&e.Status,
		&e.Error,
		&e.ReceivedAt,
		&e.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Insert records a delivery exactly once. The second return value is
// false when this (provider, event_id) pair was seen before; the caller
// then acknowledges without reprocessing.
func (r *WebhookEventsRepository) Insert(ctx context.Context, e *model.WebhookEvent) (*model.WebhookEvent, bool, error) {
	q := `
		INSERT INTO webhook_events (provider, event_id, event_type, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT webhook_events_provider_event_key DO NOTHING
		RETURNING ` + webhookEventColumns

	created, err := scanWebhookEvent(r.db.QueryRow(ctx, q,
		e.Provider, e.EventID, e.EventType, e.Payload, model.WebhookStatusReceived,
	))
	if err != nil {
		// DO NOTHING yields no row on conflict; that is the duplicate case.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "failed to insert webhook event")
	}
	return created, true, nil
}

// SetStatus records the processing outcome. processedAt is stamped here
// so skipped and failed events carry their decision time too.
func (r *WebhookEventsRepository) SetStatus(ctx context.Context, id int64, status model.WebhookStatus, processingErr *string) error {
	q := `UPDATE webhook_events SET status = $2, error = $3, processed_at = $4 WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id, status, processingErr, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to set webhook event status")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "webhook_events")
	}
	return nil
}

// ListRecent returns the latest deliveries for back-office debugging.
func (r *WebhookEventsRepository) ListRecent(ctx context.Context, limit, offset int) ([]*model.WebhookEvent, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM webhook_events`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count webhook events")
	}

	q := `
		SELECT ` + webhookEventColumns + `
		FROM webhook_events
		ORDER BY received_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list webhook events")
	}
	defer rows.Close()

	var events []*model.WebhookEvent
	for rows.Next() {
		e, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan webhook event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list webhook events")
	}

	return events, total, nil
}
