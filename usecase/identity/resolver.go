// Package identity maps the subject of a verified token to a user record.
package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
)

type Resolver struct {
	users  repository.UserRepository
	cache  repository.UserCache
	logger *zap.Logger
}

// New builds a resolver. cache may be nil.
func New(users repository.UserRepository, cache repository.UserCache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		users:  users,
		cache:  cache,
		logger: logger,
	}
}

// Resolve loads the user a verified email belongs to. A token that outlived its
// user is an authorization failure, so the miss is reported as UNAUTHORIZED
// while still unwrapping to domain.ErrUserNotFound.
func (r *Resolver) Resolve(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContext(ctx, r.logger)

	if r.cache != nil {
		user, err := r.cache.Get(ctx, email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Warn("identity cache read failed", zap.Error(err))
		}
	}

	user, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			log.Info("token subject has no user", zap.String("email", email))
			return nil, domain.WrapError(domain.ErrCodeUnauthorized, "identity is no longer registered", domain.ErrUserNotFound)
		}
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, user); err != nil {
			log.Warn("identity cache write failed", zap.Error(err))
		}
	}
	return user, nil
}
