package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
	now    func() time.Time

	strictOwnership bool
}

type Option func(*UseCase)

// WithStrictOwnership makes Update and TransitionTo require ownership the same
// way Delete does. Off by default.
func WithStrictOwnership(strict bool) Option {
	return func(uc *UseCase) { uc.strictOwnership = strict }
}

func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// New builds the task use case. buffer may be nil.
func New(tasks repository.TaskRepository, buffer usecase.OperationBuffer, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		tasks:  tasks,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Now exposes the use case clock so callers can render derived fields consistently.
func (uc *UseCase) Now() time.Time { return uc.now() }

// List returns every task owned by owner.
func (uc *UseCase) List(ctx context.Context, owner *domain.User) ([]domain.Task, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.tasks.ListByOwner(ctx, owner.ID)
}

// Filter applies c to the tasks owned by owner.
func (uc *UseCase) Filter(ctx context.Context, owner *domain.User, c Criteria) ([]domain.Task, error) {
	tasks, err := uc.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return Filter(tasks, c, uc.now()), nil
}

// Sort returns the owner's tasks with the given ids ordered by key; ties keep
// the order the ids were supplied in. With no ids every owned task is sorted.
// Ids the owner does not have fail with domain.ErrTaskNotFound.
func (uc *UseCase) Sort(ctx context.Context, owner *domain.User, ids []string, key SortKey, ascending bool) ([]domain.Task, error) {
	owned, err := uc.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	selected := owned
	if len(ids) > 0 {
		byID := make(map[string]domain.Task, len(owned))
		for _, t := range owned {
			byID[t.ID] = t
		}
		selected = make([]domain.Task, 0, len(ids))
		for _, id := range ids {
			t, ok := byID[id]
			if !ok {
				return nil, domain.WrapError(domain.ErrCodeNotFound, "task not found: "+id, domain.ErrTaskNotFound)
			}
			selected = append(selected, t)
		}
	}

	Sort(selected, key, ascending)
	return selected, nil
}

// Create stores a new task owned by owner in the CREATED state.
func (uc *UseCase) Create(ctx context.Context, owner *domain.User, in domain.TaskInput) (*domain.Task, error) {
	if owner == nil {
		return nil, domain.ErrUnauthorized
	}

	task := &domain.Task{
		ID:      uuid.NewString(),
		OwnerID: owner.ID,
		Status:  domain.StatusCreated,
	}
	in.Apply(task)
	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.Touch(uc.now())

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task, err) {
			return task, nil
		}
		return nil, err
	}
	logger.FromContext(ctx, uc.logger).Info("task created", zap.String("task_id", created.ID))
	return created, nil
}

// Update replaces every editable field of the task. Fields missing from in are
// cleared, not kept.
func (uc *UseCase) Update(ctx context.Context, actor *domain.User, id string, in domain.TaskInput) (*domain.Task, error) {
	task, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	in.Apply(task)
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return uc.save(ctx, task, "task updated")
}

// TransitionTo sets the status unconditionally; any state may follow any other.
func (uc *UseCase) TransitionTo(ctx context.Context, actor *domain.User, id string, status domain.Status) (*domain.Task, error) {
	if status.Ordinal() < 0 {
		return nil, domain.Invalidf("unknown status %q", status)
	}
	task, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	task.Status = status
	return uc.save(ctx, task, "task status changed")
}

// Delete removes a task owned by actor.
func (uc *UseCase) Delete(ctx context.Context, actor *domain.User, id string) error {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := AssertOwner(task, actor); err != nil {
		logger.FromContext(ctx, uc.logger).Warn("delete denied", zap.String("task_id", id))
		return err
	}

	if err := uc.tasks.Delete(ctx, id); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task, err) {
			return nil
		}
		return err
	}
	logger.FromContext(ctx, uc.logger).Info("task deleted", zap.String("task_id", id))
	return nil
}

func (uc *UseCase) load(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actor.ID {
		if uc.strictOwnership {
			return nil, AssertOwner(task, actor)
		}
		logger.FromContext(ctx, uc.logger).Warn("mutating a task owned by another user",
			zap.String("task_id", id),
			zap.String("owner_id", task.OwnerID))
	}
	return task, nil
}

func (uc *UseCase) save(ctx context.Context, task *domain.Task, msg string) (*domain.Task, error) {
	task.UpdatedAt = uc.now()
	if err := uc.tasks.Update(ctx, task); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, task, err) {
			return task, nil
		}
		return nil, err
	}
	logger.FromContext(ctx, uc.logger).Info(msg, zap.String("task_id", task.ID), zap.String("status", string(task.Status)))
	return task, nil
}

// shouldBuffer hands a failed write to the offline buffer. Domain errors are
// final answers from the store and are never buffered.
func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task, cause error) bool {
	if uc.buffer == nil || domain.IsClassified(cause) || errors.Is(cause, context.Canceled) {
		return false
	}
	log := logger.FromContext(ctx, uc.logger)
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		log.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	log.Warn("task operation buffered", zap.String("operation", operation), zap.Error(cause))
	return true
}
