package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/model"
)

// AuditLogsRepository appends the admin/system action trail. The audit
// service treats insert failures as log-and-continue; nothing here is
// allowed to fail a user-facing request.
type AuditLogsRepository struct {
	db Querier
}

const auditLogColumns = `id, actor_id, actor_role, action, entity, entity_id, metadata, ip, created_at`

func scanAuditLog(s scanner) (*model.AuditLog, error) {
	var l model.AuditLog
	err := s.Scan(
		&l.ID,
		&l.ActorID,
		&l.ActorRole,
		&l.Action,
		&l.Entity,
		&l.EntityID,
		&l.Metadata,
		&l.IP,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *AuditLogsRepository) Insert(ctx context.Context, l *model.AuditLog) error {
	q := `
		INSERT INTO audit_logs (actor_id, actor_role, action, entity, entity_id, metadata, ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, q, l.ActorID, l.ActorRole, l.Action, l.Entity, l.EntityID, l.Metadata, l.IP)
	if err != nil {
		return errors.Wrap(err, "failed to insert audit log")
	}
	return nil
}

// AuditLogFilter narrows audit listings. Nil/empty fields are ignored.
type AuditLogFilter struct {
	Entity  string
	ActorID *int64
}

// List returns a page of the audit trail, newest first, plus the total
// count.
func (r *AuditLogsRepository) List(ctx context.Context, filter AuditLogFilter, limit, offset int) ([]*model.AuditLog, int, error) {
	var conds []string
	var args []any

	if filter.Entity != "" {
		args = append(args, filter.Entity)
		conds = append(conds, fmt.Sprintf("entity = $%d", len(args)))
	}
	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		conds = append(conds, fmt.Sprintf("actor_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM audit_logs ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count audit logs")
	}

	q := fmt.Sprintf(`
		SELECT %s FROM audit_logs %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		auditLogColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list audit logs")
	}
	defer rows.Close()

	var logs []*model.AuditLog
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan audit log")
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list audit logs")
	}

	return logs, total, nil
}
