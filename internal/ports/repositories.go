package ports

import (
	"context"

	"github.com/tasknest/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePassword(ctx context.Context, id int64, hash string, plain *string) error
}

// FolderRepository defines the interface for folder data operations
type FolderRepository interface {
	Create(ctx context.Context, folder *entities.Folder) error
	GetByID(ctx context.Context, id int64) (*entities.Folder, error)
	GetByName(ctx context.Context, userID int64, name string) (*entities.Folder, error)
	ListByUser(ctx context.Context, userID int64) ([]*entities.Folder, error)
	Update(ctx context.Context, folder *entities.Folder) error
	Delete(ctx context.Context, id int64) error
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *entities.Tag) error
	GetByID(ctx context.Context, id int64) (*entities.Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entities.Tag, error)
	GetByName(ctx context.Context, userID int64, name string) (*entities.Tag, error)
	ListByUser(ctx context.Context, userID int64) ([]*entities.Tag, error)
	Update(ctx context.Context, tag *entities.Tag) error
	Delete(ctx context.Context, id int64) error
	// DetachFolder nulls folderId on every tag filed under folderID
	DetachFolder(ctx context.Context, folderID int64) error
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id int64) (*entities.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id int64) error
	// ClearLegacyTag nulls the legacy tagId column wherever it points at tagID
	ClearLegacyTag(ctx context.Context, tagID int64) error
	// HasImage reports whether userID owns a task whose image equals one of refs
	HasImage(ctx context.Context, userID int64, refs []string) (bool, error)
	// CountByImage counts tasks of any user whose image equals one of refs
	CountByImage(ctx context.Context, refs []string) (int, error)
}

// TaskTagRepository defines the interface for the task_tags join table
type TaskTagRepository interface {
	Add(ctx context.Context, taskID int64, tagIDs []int64) error
	DeleteByTask(ctx context.Context, taskID int64) error
	DeleteByTag(ctx context.Context, tagID int64) error
	// TagsForTasks returns the joined tags of each task that has join rows
	TagsForTasks(ctx context.Context, taskIDs []int64) (map[int64][]entities.Tag, error)
}
