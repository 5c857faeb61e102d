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

const folderColumns = `id, name, color, COALESCE(pinned, 0) AS pinned, COALESCE("userId", 0) AS "userId"`

// FolderRepositoryImpl implements the FolderRepository interface
type FolderRepositoryImpl struct {
	db *sqlx.DB
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *sqlx.DB) ports.FolderRepository {
	return &FolderRepositoryImpl{db: db}
}

func (r *FolderRepositoryImpl) Create(ctx context.Context, folder *entities.Folder) error {
	query := r.db.Rebind(`
		INSERT INTO folders (name, color, pinned, "userId")
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		folder.Name, folder.Color, folder.Pinned, folder.UserID,
	).Scan(&folder.ID)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

func (r *FolderRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Folder, error) {
	query := r.db.Rebind(`SELECT ` + folderColumns + ` FROM folders WHERE id = ?`)

	var folder entities.Folder
	if err := r.db.GetContext(ctx, &folder, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrFolderNotFound
		}
		return nil, fmt.Errorf("get folder by id: %w", err)
	}

	return &folder, nil
}

func (r *FolderRepositoryImpl) GetByName(ctx context.Context, userID int64, name string) (*entities.Folder, error) {
	query := r.db.Rebind(`SELECT ` + folderColumns + ` FROM folders WHERE "userId" = ? AND name = ? LIMIT 1`)

	var folder entities.Folder
	if err := r.db.GetContext(ctx, &folder, query, userID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrFolderNotFound
		}
		return nil, fmt.Errorf("get folder by name: %w", err)
	}

	return &folder, nil
}

func (r *FolderRepositoryImpl) ListByUser(ctx context.Context, userID int64) ([]*entities.Folder, error) {
	query := r.db.Rebind(`SELECT ` + folderColumns + ` FROM folders WHERE "userId" = ? ORDER BY id`)

	folders := []*entities.Folder{}
	if err := r.db.SelectContext(ctx, &folders, query, userID); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	return folders, nil
}

func (r *FolderRepositoryImpl) Update(ctx context.Context, folder *entities.Folder) error {
	query := r.db.Rebind(`UPDATE folders SET name = ?, color = ?, pinned = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, folder.Name, folder.Color, folder.Pinned, folder.ID)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	return expectAffected(result, entities.ErrFolderNotFound)
}

func (r *FolderRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM folders WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	return expectAffected(result, entities.ErrFolderNotFound)
}
