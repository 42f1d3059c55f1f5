package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

func TestUsers_UniqueEmail(t *testing.T) {
	users := NewStore().Users()
	ctx := context.Background()

	if err := users.Create(ctx, &domain.User{ID: "u1", Email: "a@x.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := users.Create(ctx, &domain.User{ID: "u2", Email: "a@x.com"}); !errors.Is(err, domain.ErrEmailAlreadyInUse) {
		t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
	}

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil || byEmail.ID != "u1" {
		t.Fatalf("get by email: %v, %v", byEmail, err)
	}
	byID, err := users.GetByID(ctx, "u1")
	if err != nil || byID.Email != "a@x.com" {
		t.Fatalf("get by id: %v, %v", byID, err)
	}
	if _, err := users.GetByEmail(ctx, "b@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTasks_CopiesDoNotAlias(t *testing.T) {
	tasks := NewStore().Tasks()
	ctx := context.Background()

	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &domain.Task{ID: "t1", OwnerID: "u1", Title: "original", DueDate: &due}
	if _, err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}

	task.Title = "mutated"
	*task.DueDate = due.Add(time.Hour)

	stored, err := tasks.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "original" || !stored.DueDate.Equal(due) {
		t.Fatalf("store shares memory with caller: %+v", stored)
	}
}

func TestTasks_CreateIsIdempotentByID(t *testing.T) {
	tasks := NewStore().Tasks()
	ctx := context.Background()

	if _, err := tasks.Create(ctx, &domain.Task{ID: "t1", OwnerID: "u1", Title: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(ctx, &domain.Task{ID: "t1", OwnerID: "u1", Title: "replay"}); err != nil {
		t.Fatalf("replayed create: %v", err)
	}

	list, _ := tasks.ListByOwner(ctx, "u1")
	if len(list) != 1 || list[0].Title != "first" {
		t.Fatalf("expected a single original task, got %+v", list)
	}
}

func TestTasks_UpdateKeepsOwnerAndCreation(t *testing.T) {
	tasks := NewStore().Tasks()
	ctx := context.Background()

	created, err := tasks.Create(ctx, &domain.Task{ID: "t1", OwnerID: "u1", Title: "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	next := *created
	next.OwnerID = "u2"
	next.CreatedAt = time.Time{}
	next.Title = "b"
	if err := tasks.Update(ctx, &next); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, _ := tasks.GetByID(ctx, "t1")
	if stored.Title != "b" || stored.OwnerID != "u1" || !stored.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected stored task %+v", stored)
	}

	if err := tasks.Update(ctx, &domain.Task{ID: "missing"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTasks_ListPreservesInsertionOrderAfterDelete(t *testing.T) {
	tasks := NewStore().Tasks()
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if _, err := tasks.Create(ctx, &domain.Task{ID: id, OwnerID: "u1"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := tasks.Delete(ctx, "t2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := tasks.Delete(ctx, "t2"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	list, _ := tasks.ListByOwner(ctx, "u1")
	if len(list) != 2 || list[0].ID != "t1" || list[1].ID != "t3" {
		t.Fatalf("unexpected order %+v", list)
	}
}
