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

const tagColumns = `id, name, color, COALESCE(pinned, 0) AS pinned, COALESCE("userId", 0) AS "userId", "folderId"`

// TagRepositoryImpl implements the TagRepository interface
type TagRepositoryImpl struct {
	db *sqlx.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sqlx.DB) ports.TagRepository {
	return &TagRepositoryImpl{db: db}
}

func (r *TagRepositoryImpl) Create(ctx context.Context, tag *entities.Tag) error {
	query := r.db.Rebind(`
		INSERT INTO tags (name, color, pinned, "userId", "folderId")
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		tag.Name, tag.Color, tag.Pinned, tag.UserID, tag.FolderID,
	).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

func (r *TagRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Tag, error) {
	query := r.db.Rebind(`SELECT ` + tagColumns + ` FROM tags WHERE id = ?`)

	var tag entities.Tag
	if err := r.db.GetContext(ctx, &tag, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag by id: %w", err)
	}

	return &tag, nil
}

// GetByIDs returns the tags that exist among ids, ordered by id
func (r *TagRepositoryImpl) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Tag, error) {
	tags := []*entities.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}

	query, args, err := sqlx.In(`SELECT `+tagColumns+` FROM tags WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build tag lookup: %w", err)
	}

	if err := r.db.SelectContext(ctx, &tags, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get tags by ids: %w", err)
	}

	return tags, nil
}

func (r *TagRepositoryImpl) GetByName(ctx context.Context, userID int64, name string) (*entities.Tag, error) {
	query := r.db.Rebind(`SELECT ` + tagColumns + ` FROM tags WHERE "userId" = ? AND name = ? LIMIT 1`)

	var tag entities.Tag
	if err := r.db.GetContext(ctx, &tag, query, userID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTagNotFound
		}
		return nil, fmt.Errorf("get tag by name: %w", err)
	}

	return &tag, nil
}

func (r *TagRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*entities.Tag, error) {
	query := r.db.Rebind(`SELECT ` + tagColumns + ` FROM tags WHERE "userId" = ? ORDER BY id`)

	tags := []*entities.Tag{}
	if err := r.db.SelectContext(ctx, &tags, query, userID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func (r *TagRepositoryImpl) Update(ctx context.Context, tag *entities.Tag) error {
	query := r.db.Rebind(`UPDATE tags SET name = ?, color = ?, pinned = ?, "folderId" = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, tag.Name, tag.Color, tag.Pinned, tag.FolderID, tag.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}

	return expectAffected(result, entities.ErrTagNotFound)
}

func (r *TagRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM tags WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	return expectAffected(result, entities.ErrTagNotFound)
}

func (r *TagRepositoryImpl) DetachFolder(ctx context.Context, folderID int64) error {
	query := r.db.Rebind(`UPDATE tags SET "folderId" = NULL WHERE "folderId" = ?`)

	if _, err := r.db.ExecContext(ctx, query, folderID); err != nil {
		return fmt.Errorf("detach folder from tags: %w", err)
	}

	return nil
}
