package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/database"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "repo.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db.DB
}

func createUser(t *testing.T, repo interface {
	Create(context.Context, *entities.User) error
}, email string) *entities.User {
	t.Helper()
	u := &entities.User{Name: "user", Email: email, PasswordHash: "hash"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func strPtr(s string) *string { return &s }

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))

	u := createUser(t, repo, "a@x.com")
	if u.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		err := repo.Create(ctx, &entities.User{Name: "b", Email: "a@x.com", PasswordHash: "h"})
		if !errors.Is(err, entities.ErrConflict) {
			t.Fatalf("err = %v, want conflict", err)
		}
	})

	t.Run("lookup by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "a@x.com")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != u.ID || got.PasswordHash != "hash" || got.PasswordPlain != nil {
			t.Errorf("unexpected user %+v", got)
		}
	})

	t.Run("update name and password", func(t *testing.T) {
		if err := repo.UpdateName(ctx, u.ID, "renamed"); err != nil {
			t.Fatal(err)
		}
		if err := repo.UpdatePassword(ctx, u.ID, "newhash", strPtr("plain")); err != nil {
			t.Fatal(err)
		}
		got, err := repo.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "renamed" || got.PasswordHash != "newhash" || got.PasswordPlain == nil || *got.PasswordPlain != "plain" {
			t.Errorf("unexpected user %+v", got)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, 999); !errors.Is(err, entities.ErrNotFound) {
			t.Errorf("GetByID err = %v", err)
		}
		if err := repo.UpdateName(ctx, 999, "x"); !errors.Is(err, entities.ErrNotFound) {
			t.Errorf("UpdateName err = %v", err)
		}
	})
}

func TestFolderAndTagRepositories(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	folders := NewFolderRepository(db)
	tags := NewTagRepository(db)

	u := createUser(t, users, "a@x.com")

	folder := &entities.Folder{Name: "Work", Color: strPtr(entities.DefaultFolderColor), UserID: u.ID}
	if err := folders.Create(ctx, folder); err != nil {
		t.Fatal(err)
	}

	tag := &entities.Tag{Name: "urgent", Color: strPtr("#ff0000"), UserID: u.ID, FolderID: &folder.ID}
	if err := tags.Create(ctx, tag); err != nil {
		t.Fatal(err)
	}
	other := &entities.Tag{Name: "later", UserID: u.ID}
	if err := tags.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	byName, err := folders.GetByName(ctx, u.ID, "Work")
	if err != nil || byName.ID != folder.ID {
		t.Fatalf("GetByName = %+v, %v", byName, err)
	}
	if _, err := folders.GetByName(ctx, u.ID+1, "Work"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("name lookup must be scoped per user, err = %v", err)
	}

	found, err := tags.GetByIDs(ctx, []int64{other.ID, tag.ID, 12345})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 || found[0].ID != tag.ID {
		t.Errorf("GetByIDs = %+v", found)
	}

	if err := tags.DetachFolder(ctx, folder.ID); err != nil {
		t.Fatal(err)
	}
	if err := folders.Delete(ctx, folder.ID); err != nil {
		t.Fatal(err)
	}

	got, err := tags.GetByID(ctx, tag.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != nil {
		t.Errorf("folderId = %v, want nil", *got.FolderID)
	}

	got.Pinned = true
	got.Name = "urgent!"
	if err := tags.Update(ctx, got); err != nil {
		t.Fatal(err)
	}
	list, err := tags.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "urgent!" || !bool(list[0].Pinned) {
		t.Errorf("ListByUser = %+v", list)
	}
}

func TestTaskRepositories(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tags := NewTagRepository(db)
	tasks := NewTaskRepository(db)
	taskTags := NewTaskTagRepository(db)

	u := createUser(t, users, "a@x.com")
	t1 := &entities.Tag{Name: "one", UserID: u.ID}
	t2 := &entities.Tag{Name: "two", UserID: u.ID}
	for _, tag := range []*entities.Tag{t1, t2} {
		if err := tags.Create(ctx, tag); err != nil {
			t.Fatal(err)
		}
	}

	task := &entities.Task{Title: "Ship it", Description: strPtr(""), TagID: &t1.ID, UserID: u.ID, Image: strPtr("/api/uploads/a.png")}
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatal(err)
	}
	plain := &entities.Task{Title: "plain", UserID: u.ID}
	if err := tasks.Create(ctx, plain); err != nil {
		t.Fatal(err)
	}

	if err := taskTags.Add(ctx, task.ID, []int64{t1.ID, t2.ID, t1.ID}); err != nil {
		t.Fatal(err)
	}

	resolved, err := taskTags.TagsForTasks(ctx, []int64{task.ID, plain.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved[task.ID]) != 2 || len(resolved[plain.ID]) != 0 {
		t.Errorf("TagsForTasks = %+v", resolved)
	}

	t.Run("image ownership", func(t *testing.T) {
		ok, err := tasks.HasImage(ctx, u.ID, []string{"/api/uploads/a.png", "/uploads/a.png"})
		if err != nil || !ok {
			t.Errorf("HasImage = %v, %v", ok, err)
		}
		ok, err = tasks.HasImage(ctx, u.ID+1, []string{"/api/uploads/a.png"})
		if err != nil || ok {
			t.Errorf("HasImage for stranger = %v, %v", ok, err)
		}
		n, err := tasks.CountByImage(ctx, []string{"/api/uploads/a.png"})
		if err != nil || n != 1 {
			t.Errorf("CountByImage = %d, %v", n, err)
		}
	})

	t.Run("deleting a tag's references", func(t *testing.T) {
		if err := tasks.ClearLegacyTag(ctx, t1.ID); err != nil {
			t.Fatal(err)
		}
		if err := taskTags.DeleteByTag(ctx, t1.ID); err != nil {
			t.Fatal(err)
		}
		got, err := tasks.GetByID(ctx, task.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.TagID != nil {
			t.Errorf("legacy tagId = %d, want nil", *got.TagID)
		}
		resolved, _ := taskTags.TagsForTasks(ctx, []int64{task.ID})
		if len(resolved[task.ID]) != 1 || resolved[task.ID][0].ID != t2.ID {
			t.Errorf("remaining tags = %+v", resolved[task.ID])
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		task.Completed = true
		task.TagID = nil
		if err := tasks.Update(ctx, task); err != nil {
			t.Fatal(err)
		}
		list, err := tasks.ListByUser(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || !bool(list[0].Completed) {
			t.Errorf("ListByUser = %+v", list)
		}

		if err := taskTags.DeleteByTask(ctx, task.ID); err != nil {
			t.Fatal(err)
		}
		if err := tasks.Delete(ctx, task.ID); err != nil {
			t.Fatal(err)
		}
		if err := tasks.Delete(ctx, task.ID); !errors.Is(err, entities.ErrNotFound) {
			t.Errorf("second delete err = %v", err)
		}
	})
}
