package service

import (
	"context"

	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// UsersService backs the admin customer screens.
type UsersService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewUsersService(s *server.Server, repos *repository.Repositories) *UsersService {
	return &UsersService{
		server: s,
		repos:  repos,
	}
}

func (s *UsersService) List(ctx context.Context, search string, p Pagination) ([]*model.User, PageInfo, error) {
	limit, offset := p.limitOffset()

	users, total, err := s.repos.Users.List(ctx, search, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return users, newPageInfo(p, total), nil
}

// UserDetail is the admin view of one customer: the account plus their
// current credit balance.
type UserDetail struct {
	User          *model.User `json:"user"`
	CreditBalance int         `json:"credit_balance"`
}

func (s *UsersService) Get(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	balance, err := s.repos.Credits.Balance(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &UserDetail{User: user, CreditBalance: balance}, nil
}
