package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// TaskRepository is the persistence port for tasks. Lookups that miss return
// domain.ErrTaskNotFound.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
