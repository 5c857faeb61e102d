package entities

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

const (
	// DefaultTagColor is applied when a tag is created without a color
	DefaultTagColor = "#007bff"
	// DefaultFolderColor is applied when a folder is created without a color
	DefaultFolderColor = "#64748b"
	// MaxTagNameLength bounds tag names in characters
	MaxTagNameLength = 20
	// MinPasswordLength bounds new passwords on rotation
	MinPasswordLength = 6
)

// Flag is a boolean persisted as an INTEGER 0/1 column.
// JSON input accepts true/false as well as 0/1.
type Flag bool

// Value implements driver.Valuer
func (f Flag) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}

// Scan implements sql.Scanner
func (f *Flag) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case int64:
		*f = v != 0
	case bool:
		*f = Flag(v)
	case []byte:
		*f = parseFlag(string(v))
	case string:
		*f = parseFlag(v)
	default:
		return fmt.Errorf("cannot scan %T into Flag", src)
	}
	return nil
}

// UnmarshalJSON accepts booleans and numeric 0/1
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch s {
	case "true", "1":
		*f = true
	case "false", "0", "null", "":
		*f = false
	default:
		return fmt.Errorf("invalid boolean value %s", string(data))
	}
	return nil
}

func parseFlag(s string) Flag {
	s = strings.TrimSpace(strings.ToLower(s))
	return Flag(s == "1" || s == "true")
}

// User represents an account holder
type User struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	Email         string  `json:"email" db:"email"`
	PasswordHash  string  `json:"-" db:"password"`
	PasswordPlain *string `json:"-" db:"passwordPlain"`
}

// OwnerID implements Owned; a user owns itself
func (u *User) OwnerID() int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

// Folder groups tags
type Folder struct {
	ID     int64   `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	Color  *string `json:"color" db:"color"`
	Pinned Flag    `json:"pinned" db:"pinned"`
	UserID int64   `json:"userId" db:"userId"`
}

// OwnerID implements Owned
func (f *Folder) OwnerID() int64 {
	if f == nil {
		return 0
	}
	return f.UserID
}

// Tag labels tasks; optionally filed under a folder
type Tag struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Color    *string `json:"color" db:"color"`
	Pinned   Flag    `json:"pinned" db:"pinned"`
	UserID   int64   `json:"userId" db:"userId"`
	FolderID *int64  `json:"folderId" db:"folderId"`
}

// OwnerID implements Owned
func (t *Tag) OwnerID() int64 {
	if t == nil {
		return 0
	}
	return t.UserID
}

// Task is a user's to-do item. TagID is the legacy single-tag column;
// Tags carries the resolved tag set and is never persisted directly.
type Task struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description *string `json:"description" db:"description"`
	Completed   Flag    `json:"completed" db:"completed"`
	DueDate     *string `json:"dueDate" db:"dueDate"`
	DueTime     *string `json:"dueTime" db:"dueTime"`
	Image       *string `json:"image" db:"image"`
	TagID       *int64  `json:"tagId" db:"tagId"`
	UserID      int64   `json:"userId" db:"userId"`
	Tags        []Tag   `json:"tags" db:"-"`
}

// OwnerID implements Owned
func (t *Task) OwnerID() int64 {
	if t == nil {
		return 0
	}
	return t.UserID
}

// TaskTag is a row of the task_tags join table
type TaskTag struct {
	ID     int64 `json:"id" db:"id"`
	TaskID int64 `json:"taskId" db:"taskId"`
	TagID  int64 `json:"tagId" db:"tagId"`
}

// Owned is implemented by every per-user resource
type Owned interface {
	OwnerID() int64
}

// BelongsTo reports whether resource is owned by userID.
// User ids start at 1, so a nil resource never matches.
func BelongsTo(resource Owned, userID int64) bool {
	if resource == nil || userID <= 0 {
		return false
	}
	return resource.OwnerID() == userID
}
