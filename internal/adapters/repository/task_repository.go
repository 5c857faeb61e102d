package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

const taskColumns = `id, title, description, COALESCE(completed, 0) AS completed, "dueDate", "dueTime",
	image, "tagId", COALESCE("userId", 0) AS "userId"`

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := r.db.Rebind(`
		INSERT INTO tasks (title, description, completed, "dueDate", "dueTime", image, "tagId", "userId")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		task.Title, task.Description, task.Completed, task.DueDate, task.DueTime,
		task.Image, task.TagID, task.UserID,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	var task entities.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*entities.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE "userId" = ? ORDER BY id`)

	tasks := []*entities.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := r.db.Rebind(`
		UPDATE tasks
		SET title = ?, description = ?, completed = ?, "dueDate" = ?, "dueTime" = ?,
			image = ?, "tagId" = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Completed, task.DueDate, task.DueTime,
		task.Image, task.TagID, task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return expectAffected(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return expectAffected(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) ClearLegacyTag(ctx context.Context, tagID int64) error {
	query := r.db.Rebind(`UPDATE tasks SET "tagId" = NULL WHERE "tagId" = ?`)

	if _, err := r.db.ExecContext(ctx, query, tagID); err != nil {
		return fmt.Errorf("clear legacy task tag: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) HasImage(ctx context.Context, userID int64, refs []string) (bool, error) {
	if len(refs) == 0 {
		return false, nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM tasks WHERE "userId" = ? AND image IN (?)`, userID, refs)
	if err != nil {
		return false, fmt.Errorf("build image lookup: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("check task image: %w", err)
	}

	return count > 0, nil
}

func (r *TaskRepositoryImpl) CountByImage(ctx context.Context, refs []string) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM tasks WHERE image IN (?)`, refs)
	if err != nil {
		return 0, fmt.Errorf("build image count: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count task images: %w", err)
	}

	return count, nil
}
