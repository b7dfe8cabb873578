package service

import (
	"context"

	json "github.com/goccy/go-json"

	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// AuditService records who did what in the back office. Recording is
// best-effort: a failed audit write is logged and swallowed so it can
// never fail the action it describes.
type AuditService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewAuditService(s *server.Server, repos *repository.Repositories) *AuditService {
	return &AuditService{
		server: s,
		repos:  repos,
	}
}

// AuditEntry describes one action. A nil Actor means the system itself
// acted (webhook processing, maintenance sweeps).
type AuditEntry struct {
	Actor    *model.User
	Action   string
	Entity   string
	EntityID *int64
	Metadata map[string]any
	IP       string
}

// Record appends the entry to the audit trail.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	log := &model.AuditLog{
		ActorRole: "system",
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		IP:        entry.IP,
	}
	if entry.Actor != nil {
		log.ActorID = &entry.Actor.ID
		log.ActorRole = string(entry.Actor.Role)
	}

	if len(entry.Metadata) > 0 {
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			s.server.Logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to marshal audit metadata")
		} else {
			log.Metadata = metadata
		}
	}

	if err := s.repos.AuditLogs.Insert(ctx, log); err != nil {
		s.server.Logger.Warn().
			Err(err).
			Str("action", entry.Action).
			Str("entity", entry.Entity).
			Msg("failed to write audit log")
	}
}

// List returns a page of the audit trail for the admin screen.
func (s *AuditService) List(ctx context.Context, filter repository.AuditLogFilter, p Pagination) ([]*model.AuditLog, PageInfo, error) {
	limit, offset := p.limitOffset()

	logs, total, err := s.repos.AuditLogs.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return logs, newPageInfo(p, total), nil
}
