package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, owner_id, title, description, due_date, priority, category, status, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, owner_id, title, description, due_date, priority, category, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()), COALESCE($10, NOW()))
	ON CONFLICT (id) DO NOTHING
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		nullString(task.Description),
		nullTimePtr(task.DueDate),
		string(task.Priority),
		string(task.Category),
		string(task.Status),
		nullTime(task.CreatedAt),
		nullTime(task.UpdatedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Replayed create of a row that already landed.
			return task, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "task owner does not exist", err)
		}
		return nil, err
	}

	return task, nil
}

// Update rewrites the mutable columns. owner_id and created_at are never touched.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if _, err := uuid.Parse(task.ID); err != nil {
		return domain.ErrTaskNotFound
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		due_date = $4,
		priority = $5,
		category = $6,
		status = $7,
		updated_at = COALESCE($8, NOW())
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		nullString(task.Description),
		nullTimePtr(task.DueDate),
		string(task.Priority),
		string(task.Category),
		string(task.Status),
		nullTime(task.UpdatedAt),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrTaskNotFound
	}
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		description *string
		due         *time.Time
		priority    string
		category    string
		status      string
	)

	if err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&description,
		&due,
		&priority,
		&category,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if description != nil {
		task.Description = *description
	}
	task.DueDate = due
	task.Priority = domain.Priority(priority)
	task.Category = domain.Category(category)
	task.Status = domain.Status(status)

	return &task, nil
}
