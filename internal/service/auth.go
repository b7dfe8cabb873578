package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/lib/analytics"
	"github.com/salaviva/backend/internal/lib/job"
	"github.com/salaviva/backend/internal/lib/utils"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/validation"
)

const sessionIssuer = "salaviva"

// AuthService owns registration, login and the session token lifecycle.
// Sessions are stateless HS256 JWTs carried in an HTTP-only cookie; the
// auth middleware reloads the user row per request, so tokens only prove
// identity, never authorization.
type AuthService struct {
	server    *server.Server
	repos     *repository.Repositories
	analytics *analytics.Publisher
}

func NewAuthService(s *server.Server, repos *repository.Repositories, publisher *analytics.Publisher) *AuthService {
	return &AuthService{
		server:    s,
		repos:     repos,
		analytics: publisher,
	}
}

// SessionClaims is the JWT payload stored in the session cookie. Role is
// a hint for clients; the middleware re-reads it from the database.
type SessionClaims struct {
	UserID int64      `json:"uid"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session JWT for the user, valid for the
// configured TTL.
func (s *AuthService) IssueSessionToken(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.server.Config.Auth.SessionTTLHours) * time.Hour)

	claims := &SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.server.Config.Auth.SessionSecret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}

	return token, expiresAt, nil
}

// ParseSessionToken verifies the cookie value and returns its claims. Any
// failure (bad signature, expiry, wrong algorithm) collapses into a 401 so
// callers don't learn which check tripped.
func (s *AuthService) ParseSessionToken(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.server.Config.Auth.SessionSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, errs.NewUnauthorizedError("Invalid or expired session", true)
	}

	return claims, nil
}

// ResolveSession turns a cookie token into the current user. The row is
// reloaded on every call so role changes and deletions take effect without
// waiting for the token to expire.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.ParseSessionToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewUnauthorizedError("Invalid or expired session", true)
		}

		return nil, err
	}

	return user, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	CPF      string
	Phone    string
	Password string
}

// Register creates an account, or claims a passwordless one left behind by
// guest checkout. An email that already has a password is rejected; we
// never overwrite credentials through this path.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil && existing.HasPassword() {
		return nil, errs.NewBadRequestError(
			"An account with this email already exists",
			true,
			utils.Ptr("USER_ALREADY_EXISTS"),
			nil,
			nil,
		)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &model.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: utils.Ptr(string(hash)),
	}
	if cpf := validation.NormalizeCPF(input.CPF); cpf != "" {
		user.CPF = utils.Ptr(cpf)
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = utils.Ptr(phone)
	}

	user, err = s.repos.Users.UpsertByEmail(ctx, user)
	if err != nil {
		return nil, err
	}

	task, err := job.NewWelcomeEmailTask(user.Email, user.Name)
	if err == nil {
		err = s.server.Job.Enqueue(ctx, task)
	}
	if err != nil {
		s.server.Logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to enqueue welcome email")
	}

	s.analytics.Track(ctx, analytics.Event{
		Name:    analytics.EventCompleteRegistration,
		EventID: fmt.Sprintf("registration-%d", user.ID),
		Email:   user.Email,
	})

	return user, nil
}

// Login verifies credentials. Unknown email, passwordless account and
// wrong password all return the same 401 message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	invalid := errs.NewUnauthorizedError("Invalid email or password", true)

	user, err := s.repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invalid
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, invalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	return user, nil
}

// Profile is the /auth/me response body.
type Profile struct {
	User          *model.User `json:"user"`
	CreditBalance int         `json:"credit_balance"`
}

// Me returns the session's user together with their credit-hour balance.
func (s *AuthService) Me(ctx context.Context, user *model.User) (*Profile, error) {
	balance, err := s.repos.Credits.Balance(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, CreditBalance: balance}, nil
}

type GuestInput struct {
	Name  string
	Email string
	CPF   string
}

// ResolveGuest upserts a passwordless account for guest checkout so the
// payment has an owner the customer can later claim by registering with
// the same email.
func (s *AuthService) ResolveGuest(ctx context.Context, input GuestInput) (*model.User, error) {
	user := &model.User{
		Name:  strings.TrimSpace(input.Name),
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
	}
	if cpf := validation.NormalizeCPF(input.CPF); cpf != "" {
		user.CPF = utils.Ptr(cpf)
	}

	return s.repos.Users.UpsertByEmail(ctx, user)
}
