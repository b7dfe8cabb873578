package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salaviva/backend/internal/server"
)

// Repositories is a container for all repository instances, built once at
// startup and handed to the service layer.
type Repositories struct {
	pool *pgxpool.Pool

	Users         *UsersRepository
	Rooms         *RoomsRepository
	Products      *ProductsRepository
	Bookings      *BookingsRepository
	Credits       *CreditsRepository
	Coupons       *CouponsRepository
	Payments      *PaymentsRepository
	WebhookEvents *WebhookEventsRepository
	AuditLogs     *AuditLogsRepository
	Settings      *SettingsRepository
}

// NewRepositories constructs the repository container on the server's
// connection pool.
func NewRepositories(s *server.Server) *Repositories {
	r := newRepositories(s.DB.Pool)
	r.pool = s.DB.Pool
	return r
}

func newRepositories(db Querier) *Repositories {
	return &Repositories{
		Users:         &UsersRepository{db: db},
		Rooms:         &RoomsRepository{db: db},
		Products:      &ProductsRepository{db: db},
		Bookings:      &BookingsRepository{db: db},
		Credits:       &CreditsRepository{db: db},
		Coupons:       &CouponsRepository{db: db},
		Payments:      &PaymentsRepository{db: db},
		WebhookEvents: &WebhookEventsRepository{db: db},
		AuditLogs:     &AuditLogsRepository{db: db},
		Settings:      &SettingsRepository{db: db},
	}
}

// InTx runs fn with a repository set bound to a single database
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise, so multi-table writes (book with credits, webhook
// processing, refunds) stay atomic.
//
// Only the container created by NewRepositories can open transactions;
// nesting InTx inside fn is not supported.
func (r *Repositories) InTx(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}
