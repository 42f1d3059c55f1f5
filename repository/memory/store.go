// Package memory keeps users and tasks in process memory. It backs local runs
// (STORAGE_DRIVER=memory) and the use-case tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

// Store is a goroutine-safe map-backed repository. Values are copied on the way
// in and out so callers never share memory with the store.
type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.User // id -> user
	byEmail map[string]string      // email -> id
	tasks   map[string]domain.Task // id -> task
	order   []string               // task ids in insertion order
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
		tasks:   make(map[string]domain.Task),
		now:     time.Now,
	}
}

// Users exposes the store as a UserRepository.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Tasks exposes the store as a TaskRepository.
func (s *Store) Tasks() repository.TaskRepository { return taskRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.byEmail[user.Email]; taken {
		return domain.ErrEmailAlreadyInUse
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	r.s.users[user.ID] = *user
	r.s.byEmail[user.Email] = user.ID
	return nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r taskRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Task, 0)
	for _, id := range r.s.order {
		if task := r.s.tasks[id]; task.OwnerID == ownerID {
			out = append(out, *cloneTask(task))
		}
	}
	return out, nil
}

func (r taskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.tasks[task.ID]; exists {
		return task, nil
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		task.Touch(r.s.now())
	}
	r.s.tasks[task.ID] = *cloneTask(*task)
	r.s.order = append(r.s.order, task.ID)
	return task, nil
}

func (r taskRepo) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = r.s.now()
	}
	next := *cloneTask(*task)
	next.OwnerID = stored.OwnerID
	next.CreatedAt = stored.CreatedAt
	r.s.tasks[task.ID] = next
	return nil
}

func (r taskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	for i, v := range r.s.order {
		if v == id {
			r.s.order = append(r.s.order[:i], r.s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneTask(t domain.Task) *domain.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return &t
}
