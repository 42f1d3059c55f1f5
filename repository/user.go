package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// UserRepository stores registered users. Create returns domain.ErrEmailAlreadyInUse
// when the email is taken.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// UserCache is a read-through cache of identities keyed by email. Get returns
// domain.ErrUserNotFound on a miss.
type UserCache interface {
	Get(ctx context.Context, email string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
}
