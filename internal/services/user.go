package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/melo-app/accounts/internal/apperr"
	"github.com/melo-app/accounts/internal/auth"
	"github.com/melo-app/accounts/internal/events"
	"github.com/melo-app/accounts/internal/store"
	"github.com/melo-app/accounts/internal/validate"
	"github.com/melo-app/accounts/types"
)

// Outward messages for collapsed auth failures. Lookup misses, password
// mismatches, and internal errors all surface identically so callers
// cannot enumerate accounts.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidToken       = "Invalid Token"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int, fields map[string]any) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// CreateUserParams are the caller-settable fields of a new account.
// Role is always the default; it cannot be chosen at creation.
type CreateUserParams struct {
	Email    string
	Password string
	FullName string
}

// UserService encapsulates account use-cases: create, login, authenticate,
// and patch. It is safe for concurrent use; the only shared state is the
// repository and the token service's immutable secret.
type UserService struct {
	repo      UserRepository
	tokens    *auth.TokenService
	publisher *events.Publisher
	logger    *slog.Logger
}

// NewUserService constructs a UserService. publisher may be nil, in which
// case lifecycle events are not emitted.
func NewUserService(repo UserRepository, tokens *auth.TokenService, publisher *events.Publisher, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, tokens: tokens, publisher: publisher, logger: logger}
}

// Create validates and normalizes the request, hashes the password, and
// persists a new account with the default role. A duplicate email fails
// with a conflict error; under concurrent creates the database uniqueness
// constraint guarantees exactly one winner.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (types.User, error) {
	email, err := validate.NormalizeEmail(params.Email)
	if err != nil {
		return types.User{}, err
	}
	if err := validate.Password(params.Password); err != nil {
		return types.User{}, err
	}
	fullName, err := validate.FullName(params.FullName)
	if err != nil {
		return types.User{}, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		FullName:     fullName,
		Role:         types.DefaultRole,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, apperr.Conflict("Email already exists", err)
		}
		return types.User{}, err
	}

	s.emit(ctx, events.TypeUserCreated, user)
	return user, nil
}

// Login verifies credentials and issues a token. Every failure path
// surfaces the same generic auth error; the underlying cause is only
// logged.
func (s *UserService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	fail := func(cause error) (string, time.Time, error) {
		s.logger.WarnContext(ctx, "login rejected", "error", cause)
		return "", time.Time{}, apperr.Auth(msgInvalidCredentials, cause)
	}

	normalized, err := validate.NormalizeEmail(email)
	if err != nil {
		return fail(err)
	}

	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		return fail(err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(errors.New("password mismatch"))
	}

	token, expiry, err := s.tokens.Issue(user.ID)
	if err != nil {
		return fail(err)
	}
	return token, expiry, nil
}

// Authenticate parses the bearer scheme, verifies the token, and loads the
// bound account. As with Login, all failure causes collapse into one
// generic auth error; the HTTP layer attaches the bearer challenge.
func (s *UserService) Authenticate(ctx context.Context, authorizationHeader string) (types.User, error) {
	fail := func(cause error) (types.User, error) {
		s.logger.WarnContext(ctx, "authentication rejected", "error", cause)
		return types.User{}, apperr.Auth(msgInvalidToken, cause)
	}

	tokenString, err := auth.ParseBearer(authorizationHeader)
	if err != nil {
		return fail(err)
	}

	userID, err := s.tokens.Verify(tokenString)
	if err != nil {
		return fail(err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fail(err)
	}
	return user, nil
}

// Patch resolves the payload into a validated field map and applies it to
// the record. An empty resolved map leaves the record untouched.
func (s *UserService) Patch(ctx context.Context, existing types.User, payload map[string]any) (types.User, error) {
	fields, err := ResolvePatch(payload)
	if err != nil {
		return types.User{}, err
	}
	if len(fields) == 0 {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, existing.ID, fields)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, apperr.Conflict("Email already exists", err)
		}
		return types.User{}, err
	}

	s.emit(ctx, events.TypeUserUpdated, updated)
	return updated, nil
}

// GetByID loads an account by id.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) emit(ctx context.Context, eventType string, user types.User) {
	if s.publisher == nil {
		return
	}
	var err error
	switch eventType {
	case events.TypeUserCreated:
		err = s.publisher.UserCreated(ctx, user)
	case events.TypeUserUpdated:
		err = s.publisher.UserUpdated(ctx, user)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "publish user event failed", "type", eventType, "user_id", user.ID, "error", err)
	}
}
