package service

import (
	"context"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/lib/utils"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// CreditService exposes the credit-hour ledger: balance plus history for
// customers, manual adjustments for admins. All balance math happens in
// the ledger; there is no cached balance column to drift.
type CreditService struct {
	server *server.Server
	repos  *repository.Repositories
	audit  *AuditService
}

func NewCreditService(s *server.Server, repos *repository.Repositories, audit *AuditService) *CreditService {
	return &CreditService{
		server: s,
		repos:  repos,
		audit:  audit,
	}
}

// CreditSummary is the customer credits page: current balance plus a page
// of ledger history.
type CreditSummary struct {
	Balance int                  `json:"balance"`
	Entries []*model.CreditEntry `json:"entries"`
	Pages   PageInfo             `json:"pages"`
}

func (s *CreditService) Summary(ctx context.Context, userID int64, p Pagination) (*CreditSummary, error) {
	balance, err := s.repos.Credits.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit, offset := p.limitOffset()
	entries, total, err := s.repos.Credits.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &CreditSummary{
		Balance: balance,
		Entries: entries,
		Pages:   newPageInfo(p, total),
	}, nil
}

// Adjust appends a manual adjustment row for the user. Negative deltas
// may not take the balance below zero; claw-backs that can (product
// refunds) go through the payment refund path instead.
func (s *CreditService) Adjust(ctx context.Context, actor *model.User, userID int64, deltaHours int, note string) (*model.CreditEntry, error) {
	if deltaHours == 0 {
		return nil, errs.NewUnprocessableError("Adjustment delta must not be zero", nil)
	}

	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var entry *model.CreditEntry
	err := s.repos.InTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Users.LockByID(ctx, userID); err != nil {
			return err
		}

		balance, err := tx.Credits.Balance(ctx, userID)
		if err != nil {
			return err
		}
		if balance+deltaHours < 0 {
			return errs.NewUnprocessableError("Adjustment would leave a negative balance", utils.Ptr("INSUFFICIENT_CREDITS"))
		}

		e := &model.CreditEntry{
			UserID:     userID,
			DeltaHours: deltaHours,
			Kind:       model.CreditKindAdjustment,
		}
		if note != "" {
			e.Note = utils.Ptr(note)
		}

		entry, err = tx.Credits.Insert(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "credits.adjust",
		Entity:   "users",
		EntityID: &userID,
		Metadata: map[string]any{"delta_hours": deltaHours, "note": note},
	})

	return entry, nil
}
