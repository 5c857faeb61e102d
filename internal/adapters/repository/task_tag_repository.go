package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

// TaskTagRepositoryImpl implements the TaskTagRepository interface
type TaskTagRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskTagRepository creates a new task_tags repository
func NewTaskTagRepository(db *sqlx.DB) ports.TaskTagRepository {
	return &TaskTagRepositoryImpl{db: db}
}

// Add inserts one join row per tag; pairs that already exist are skipped
func (r *TaskTagRepositoryImpl) Add(ctx context.Context, taskID int64, tagIDs []int64) error {
	query := r.db.Rebind(`
		INSERT INTO task_tags ("taskId", "tagId")
		VALUES (?, ?)
		ON CONFLICT ("taskId", "tagId") DO NOTHING`)

	for _, tagID := range tagIDs {
		if _, err := r.db.ExecContext(ctx, query, taskID, tagID); err != nil {
			return fmt.Errorf("add task tag: %w", err)
		}
	}

	return nil
}

func (r *TaskTagRepositoryImpl) DeleteByTask(ctx context.Context, taskID int64) error {
	query := r.db.Rebind(`DELETE FROM task_tags WHERE "taskId" = ?`)

	if _, err := r.db.ExecContext(ctx, query, taskID); err != nil {
		return fmt.Errorf("delete task tags by task: %w", err)
	}

	return nil
}

func (r *TaskTagRepositoryImpl) DeleteByTag(ctx context.Context, tagID int64) error {
	query := r.db.Rebind(`DELETE FROM task_tags WHERE "tagId" = ?`)

	if _, err := r.db.ExecContext(ctx, query, tagID); err != nil {
		return fmt.Errorf("delete task tags by tag: %w", err)
	}

	return nil
}

type taskTagRow struct {
	TaskID int64 `db:"taskId"`
	entities.Tag
}

func (r *TaskTagRepositoryImpl) TagsForTasks(ctx context.Context, taskIDs []int64) (map[int64][]entities.Tag, error) {
	result := make(map[int64][]entities.Tag)
	if len(taskIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT tt."taskId" AS "taskId", t.id, t.name, t.color, COALESCE(t.pinned, 0) AS pinned,
			COALESCE(t."userId", 0) AS "userId", t."folderId"
		FROM task_tags tt
		JOIN tags t ON t.id = tt."tagId"
		WHERE tt."taskId" IN (?)
		ORDER BY tt."taskId", tt.id`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("build task tag lookup: %w", err)
	}

	var rows []taskTagRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get tags for tasks: %w", err)
	}

	for _, row := range rows {
		result[row.TaskID] = append(result[row.TaskID], row.Tag)
	}

	return result, nil
}
