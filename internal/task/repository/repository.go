package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/sultonabiev/task-management/internal/common/db"
	"github.com/sultonabiev/task-management/internal/task/domain"
)

type Repository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Update(ctx context.Context, id domain.ID, task domain.Task) (domain.Task, error)
	Complete(ctx context.Context, id domain.ID, completedBy string) (domain.Task, error)
	Delete(ctx context.Context, id domain.ID) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO tasks (name, details, assigned_to, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		task.Name,
		task.Details,
		task.AssignedTo,
		task.Status,
	)

	if err := row.Scan(&task.ID); err != nil {
		return domain.Task{}, db.HandleExecError(err, "create task", start)
	}

	_ = db.HandleExecError(nil, "create task", start)
	return task, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.Task, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, details, assigned_to, status, completed_by FROM tasks ORDER BY id`,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list tasks", start)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Details, &t.AssignedTo, &t.Status, &t.CompletedBy); err != nil {
			return nil, db.HandleExecError(err, "list tasks", start)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list tasks", start)
	}

	_ = db.HandleExecError(nil, "list tasks", start)
	return tasks, nil
}

// Update overwrites name, details, assignee and status wholesale.
// completed_by is deliberately left untouched: only Complete writes it.
func (r *PgRepository) Update(ctx context.Context, id domain.ID, task domain.Task) (domain.Task, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE tasks
		 SET name = $2, details = $3, assigned_to = $4, status = $5
		 WHERE id = $1
		 RETURNING id, name, details, assigned_to, status, completed_by`,
		int64(id),
		task.Name,
		task.Details,
		task.AssignedTo,
		task.Status,
	)

	var updated domain.Task
	err := row.Scan(&updated.ID, &updated.Name, &updated.Details, &updated.AssignedTo, &updated.Status, &updated.CompletedBy)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "update task", start); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// Complete marks the task completed and records who completed it, in a
// single statement. Repeat completions simply overwrite completed_by.
func (r *PgRepository) Complete(ctx context.Context, id domain.ID, completedBy string) (domain.Task, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`UPDATE tasks
		 SET status = TRUE, completed_by = $2
		 WHERE id = $1
		 RETURNING id, name, details, assigned_to, status, completed_by`,
		int64(id),
		completedBy,
	)

	var completed domain.Task
	err := row.Scan(&completed.ID, &completed.Name, &completed.Details, &completed.AssignedTo, &completed.Status, &completed.CompletedBy)
	if err := db.HandleQueryError(err, ErrTaskNotFound, "complete task", start); err != nil {
		return domain.Task{}, err
	}
	return completed, nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM tasks WHERE id = $1`,
		int64(id),
	)
	if err := db.HandleExecError(err, "delete task", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

var ErrTaskNotFound = errors.New("task not found")
