package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")

	theirFolder, err := env.folders.CreateFolder(ctx, b, ports.CreateFolderRequest{Name: "Theirs"})
	if err != nil {
		t.Fatal(err)
	}

	tag, err := env.tags.CreateTag(ctx, a, ports.CreateTagRequest{Name: "urgent"})
	if err != nil {
		t.Fatal(err)
	}
	if tag.Color == nil || *tag.Color != entities.DefaultTagColor {
		t.Errorf("color = %v, want default", tag.Color)
	}

	tests := []struct {
		name   string
		userID int64
		req    ports.CreateTagRequest
		kind   error
	}{
		{"blank name", a, ports.CreateTagRequest{Name: " "}, entities.ErrValidation},
		{"name too long", a, ports.CreateTagRequest{Name: strings.Repeat("x", 21)}, entities.ErrValidation},
		{"duplicate name", a, ports.CreateTagRequest{Name: "urgent"}, entities.ErrConflict},
		{"foreign folder", a, ports.CreateTagRequest{Name: "x", FolderID: &theirFolder.ID}, entities.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tags.CreateTag(ctx, tt.userID, tt.req)
			assertKind(t, err, tt.kind)
		})
	}

	t.Run("twenty characters is allowed", func(t *testing.T) {
		if _, err := env.tags.CreateTag(ctx, a, ports.CreateTagRequest{Name: strings.Repeat("y", 20)}); err != nil {
			t.Errorf("CreateTag() error = %v", err)
		}
	})

	t.Run("names are unique per user only", func(t *testing.T) {
		if _, err := env.tags.CreateTag(ctx, b, ports.CreateTagRequest{Name: "urgent"}); err != nil {
			t.Errorf("CreateTag() for second user error = %v", err)
		}
	})
}

func TestUpdateTag(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")

	folder, err := env.folders.CreateFolder(ctx, a, ports.CreateFolderRequest{Name: "Work"})
	if err != nil {
		t.Fatal(err)
	}
	tag, err := env.tags.CreateTag(ctx, a, ports.CreateTagRequest{Name: "one", Color: strPtr("#111111"), FolderID: &folder.ID})
	if err != nil {
		t.Fatal(err)
	}
	env.tag(t, a, "two")

	decode := func(body string) ports.UpdateTagRequest {
		var req ports.UpdateTagRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatal(err)
		}
		return req
	}

	got, err := env.tags.UpdateTag(ctx, a, tag.ID, decode(`{"pinned": true}`))
	if err != nil {
		t.Fatal(err)
	}
	if !bool(got.Pinned) || got.Name != "one" || *got.Color != "#111111" || got.FolderID == nil {
		t.Errorf("partial update changed other fields: %+v", got)
	}

	_, err = env.tags.UpdateTag(ctx, a, tag.ID, decode(`{"name": "two"}`))
	assertKind(t, err, entities.ErrConflict)

	got, err = env.tags.UpdateTag(ctx, a, tag.ID, decode(`{"name": "one", "folderId": null}`))
	if err != nil {
		t.Fatal(err)
	}
	if got.FolderID != nil {
		t.Errorf("folderId = %d, want nil", *got.FolderID)
	}

	_, err = env.tags.UpdateTag(ctx, b, tag.ID, decode(`{"name": "mine"}`))
	assertKind(t, err, entities.ErrNotFound)

	err = env.tags.DeleteTag(ctx, b, tag.ID)
	assertKind(t, err, entities.ErrNotFound)
}

func TestFolderLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")

	work, err := env.folders.CreateFolder(ctx, a, ports.CreateFolderRequest{Name: "Work"})
	if err != nil {
		t.Fatal(err)
	}
	if work.Color == nil || *work.Color != entities.DefaultFolderColor || bool(work.Pinned) {
		t.Errorf("unexpected defaults %+v", work)
	}
	home, err := env.folders.CreateFolder(ctx, a, ports.CreateFolderRequest{Name: "Home", Color: strPtr("#00ff00")})
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.folders.CreateFolder(ctx, a, ports.CreateFolderRequest{Name: "Work"})
	assertKind(t, err, entities.ErrConflict)
	_, err = env.folders.CreateFolder(ctx, a, ports.CreateFolderRequest{Name: ""})
	assertKind(t, err, entities.ErrValidation)

	t.Run("rename checks other folders", func(t *testing.T) {
		_, err := env.folders.UpdateFolder(ctx, a, home.ID, ports.UpdateFolderRequest{Name: ports.Some("Work")})
		assertKind(t, err, entities.ErrConflict)

		got, err := env.folders.UpdateFolder(ctx, a, home.ID, ports.UpdateFolderRequest{Name: ports.Some("Home"), Pinned: ports.Some(entities.Flag(true))})
		if err != nil {
			t.Fatal(err)
		}
		if !bool(got.Pinned) || *got.Color != "#00ff00" {
			t.Errorf("unexpected folder %+v", got)
		}

		_, err = env.folders.UpdateFolder(ctx, a, home.ID, ports.UpdateFolderRequest{Name: ports.Some("  ")})
		assertKind(t, err, entities.ErrValidation)
	})

	t.Run("cross user", func(t *testing.T) {
		_, err := env.folders.GetFolder(ctx, b, work.ID)
		assertKind(t, err, entities.ErrNotFound)
		err = env.folders.DeleteFolder(ctx, b, work.ID)
		assertKind(t, err, entities.ErrNotFound)
	})

	t.Run("delete detaches tags", func(t *testing.T) {
		tag, err := env.tags.CreateTag(ctx, a, ports.CreateTagRequest{Name: "filed", FolderID: &work.ID})
		if err != nil {
			t.Fatal(err)
		}

		if err := env.folders.DeleteFolder(ctx, a, work.ID); err != nil {
			t.Fatalf("DeleteFolder() error = %v", err)
		}

		got, err := env.tags.GetTag(ctx, a, tag.ID)
		if err != nil {
			t.Fatalf("tag deleted with folder: %v", err)
		}
		if got.FolderID != nil {
			t.Errorf("folderId = %d, want nil", *got.FolderID)
		}

		folders, err := env.folders.ListFolders(ctx, a)
		if err != nil || len(folders) != 1 || folders[0].ID != home.ID {
			t.Errorf("ListFolders() = %+v, %v", folders, err)
		}
	})
}
