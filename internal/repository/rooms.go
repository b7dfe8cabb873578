package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

type RoomsRepository struct {
	db Querier
}

const roomColumns = `id, name, slug, description, hourly_rate, capacity, open_hour, close_hour, active, position, created_at, updated_at`

func scanRoom(s scanner) (*model.Room, error) {
	var room model.Room
	err := s.Scan(
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
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// List returns rooms in admin-defined display order. activeOnly filters
// to bookable rooms for the public catalog; admins see everything.
func (r *RoomsRepository) List(ctx context.Context, activeOnly bool) ([]*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY position, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan room")
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list rooms")
	}

	return rooms, nil
}

func (r *RoomsRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "rooms")
		}
		return nil, errors.Wrap(err, "failed to fetch room")
	}
	return room, nil
}

func (r *RoomsRepository) GetBySlug(ctx context.Context, slug string) (*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE slug = $1`

	room, err := scanRoom(r.db.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "rooms")
		}
		return nil, errors.Wrap(err, "failed to fetch room by slug")
	}
	return room, nil
}

func (r *RoomsRepository) Create(ctx context.Context, room *model.Room) (*model.Room, error) {
	q := `
		INSERT INTO rooms (name, slug, description, hourly_rate, capacity, open_hour, close_hour, active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + roomColumns

	created, err := scanRoom(r.db.QueryRow(ctx, q,
		room.Name, room.Slug, room.Description, room.HourlyRate,
		room.Capacity, room.OpenHour, room.CloseHour, room.Active, room.Position,
	))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create room")
	}
	return created, nil
}

func (r *RoomsRepository) Update(ctx context.Context, room *model.Room) (*model.Room, error) {
	q := `
		UPDATE rooms SET
			name        = $2,
			slug        = $3,
			description = $4,
			hourly_rate = $5,
			capacity    = $6,
			open_hour   = $7,
			close_hour  = $8,
			active      = $9,
			position    = $10,
			updated_at  = now()
		WHERE id = $1
		RETURNING ` + roomColumns

	updated, err := scanRoom(r.db.QueryRow(ctx, q,
		room.ID, room.Name, room.Slug, room.Description, room.HourlyRate,
		room.Capacity, room.OpenHour, room.CloseHour, room.Active, room.Position,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, noRows(err, "rooms")
		}
		return nil, errors.Wrap(err, "failed to update room")
	}
	return updated, nil
}

// Deactivate hides a room from the catalog without touching its booking
// history. Used instead of Delete once any booking references the room.
func (r *RoomsRepository) Deactivate(ctx context.Context, id int64) error {
	q := `UPDATE rooms SET active = FALSE, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "failed to deactivate room")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "rooms")
	}
	return nil
}

// Delete removes a room outright. Callers check for bookings first; a
// referencing row would fail the FK anyway and map to a client error.
func (r *RoomsRepository) Delete(ctx context.Context, id int64) error {
	q := `DELETE FROM rooms WHERE id = $1`

	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete room")
	}
	if tag.RowsAffected() == 0 {
		return noRows(pgx.ErrNoRows, "rooms")
	}
	return nil
}
