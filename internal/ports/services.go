package ports

import (
	"context"
	"io"

	"github.com/tasknest/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*entities.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	UpdateName(ctx context.Context, userID int64, name string) (string, error)
	GetPassword(ctx context.Context, userID int64) (string, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
	ValidateToken(tokenString string) (int64, error)
}

// TaskService interface for task operations
type TaskService interface {
	ListTasks(ctx context.Context, userID int64) ([]*entities.Task, error)
	GetTask(ctx context.Context, userID, taskID int64) (*entities.Task, error)
	CreateTask(ctx context.Context, userID int64, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, userID, taskID int64, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

// TagService interface for tag operations
type TagService interface {
	ListTags(ctx context.Context, userID int64) ([]*entities.Tag, error)
	GetTag(ctx context.Context, userID, tagID int64) (*entities.Tag, error)
	CreateTag(ctx context.Context, userID int64, req CreateTagRequest) (*entities.Tag, error)
	UpdateTag(ctx context.Context, userID, tagID int64, req UpdateTagRequest) (*entities.Tag, error)
	DeleteTag(ctx context.Context, userID, tagID int64) error
}

// FolderService interface for folder operations
type FolderService interface {
	ListFolders(ctx context.Context, userID int64) ([]*entities.Folder, error)
	GetFolder(ctx context.Context, userID, folderID int64) (*entities.Folder, error)
	CreateFolder(ctx context.Context, userID int64, req CreateFolderRequest) (*entities.Folder, error)
	UpdateFolder(ctx context.Context, userID, folderID int64, req UpdateFolderRequest) (*entities.Folder, error)
	DeleteFolder(ctx context.Context, userID, folderID int64) error
}

// UploadService interface for image upload and retrieval
type UploadService interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)
	// Resolve verifies token and ownership and returns the on-disk path of filename
	Resolve(ctx context.Context, token, filename string) (string, error)
}

// Auth related types
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" required_message:"Name, email and password are required"`
	Email    string `json:"email" validate:"required" required_message:"Name, email and password are required"`
	Password string `json:"password" validate:"required" required_message:"Name, email and password are required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required" required_message:"Email and password are required"`
	Password string `json:"password" validate:"required" required_message:"Email and password are required"`
}

type LoginResponse struct {
	Token         string `json:"token"`
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	PasswordPlain string `json:"passwordPlain"`
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

type UpdateNameResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

type PasswordResponse struct {
	PasswordPlain string `json:"passwordPlain"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" required_message:"Current password and new password are required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6" label:"New password" required_message:"Current password and new password are required"`
}

// Task related types

// CreateTaskRequest accepts either tagIds or the legacy single tagId
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required" label:"Title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	DueTime     *string `json:"dueTime"`
	Image       *string `json:"image"`
	TagIDs      []int64 `json:"tagIds"`
	TagID       *int64  `json:"tagId"`
}

// UpdateTaskRequest carries a partial update; unset fields keep their value
type UpdateTaskRequest struct {
	Title       Optional[string]        `json:"title"`
	Description Optional[string]        `json:"description"`
	Completed   Optional[entities.Flag] `json:"completed"`
	DueDate     Optional[string]        `json:"dueDate"`
	DueTime     Optional[string]        `json:"dueTime"`
	Image       Optional[string]        `json:"image"`
	TagIDs      Optional[[]int64]       `json:"tagIds"`
	TagID       Optional[int64]         `json:"tagId"`
}

// Tag related types
type CreateTagRequest struct {
	Name     string  `json:"name" validate:"required,max=20" label:"Tag name"`
	Color    *string `json:"color"`
	FolderID *int64  `json:"folderId"`
}

type UpdateTagRequest struct {
	Name     Optional[string]        `json:"name"`
	Color    Optional[string]        `json:"color"`
	Pinned   Optional[entities.Flag] `json:"pinned"`
	FolderID Optional[int64]         `json:"folderId"`
}

// Folder related types
type CreateFolderRequest struct {
	Name   string         `json:"name" validate:"required" label:"Folder name"`
	Color  *string        `json:"color"`
	Pinned *entities.Flag `json:"pinned"`
}

type UpdateFolderRequest struct {
	Name   Optional[string]        `json:"name"`
	Color  Optional[string]        `json:"color"`
	Pinned Optional[entities.Flag] `json:"pinned"`
}

// Upload related types
type UploadRequest struct {
	UserID   int64
	TaskID   *int64
	Filename string
	Size     int64
	Content  io.Reader
}

type UploadResponse struct {
	Filename string `json:"filename"`
	ImageURL string `json:"imageUrl"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
