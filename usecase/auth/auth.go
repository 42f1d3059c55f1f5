package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/pkg/password"
	"github.com/fastygo/tasktracker/repository"
)

// TokenIssuer produces the token pair handed out on register and login.
type TokenIssuer interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
}

// Tokens is the credential pair returned to clients.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Registration is the outcome of a successful Register.
type Registration struct {
	User *domain.User `json:"user"`
	Tokens
}

type UseCase struct {
	users  repository.UserRepository
	hasher password.Hasher
	tokens TokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

func New(users repository.UserRepository, hasher password.Hasher, tokens TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a user and signs them in.
func (uc *UseCase) Register(ctx context.Context, email, plain string) (*Registration, error) {
	log := logger.FromContext(ctx, uc.logger)

	if err := domain.ValidateCredentials(email, plain); err != nil {
		return nil, err
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(plain)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    uc.now(),
	}
	// The unique index still decides races between concurrent registrations.
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := uc.issue(user)
	if err != nil {
		log.Error("failed to issue tokens", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.String("user_id", user.ID))
	return &Registration{User: user, Tokens: *tokens}, nil
}

// Login checks the password and returns a fresh token pair. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (uc *UseCase) Login(ctx context.Context, email, plain string) (*Tokens, error) {
	log := logger.FromContext(ctx, uc.logger)

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := uc.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		log.Error("failed to verify password", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	if !ok {
		log.Info("password mismatch", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	log.Info("user logged in", zap.String("user_id", user.ID))
	return tokens, nil
}

func (uc *UseCase) issue(user *domain.User) (*Tokens, error) {
	access, err := uc.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := uc.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}
