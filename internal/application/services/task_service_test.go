package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/ports"
)

func TestCreateTaskTagCardinality(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	uid := env.register(t, "a@x.com")
	t1 := env.tag(t, uid, "one")
	t2 := env.tag(t, uid, "two")

	t.Run("two tags leave legacy column null", func(t *testing.T) {
		task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "multi", TagIDs: []int64{t1.ID, t2.ID}})
		if err != nil {
			t.Fatal(err)
		}
		if task.TagID != nil {
			t.Errorf("tagId = %d, want nil", *task.TagID)
		}
		if !equalIDs(tagIDsOf(task), []int64{t1.ID, t2.ID}) {
			t.Errorf("tags = %v", tagIDsOf(task))
		}
	})

	t.Run("single tag mirrors legacy column", func(t *testing.T) {
		task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "single", TagIDs: []int64{t1.ID}})
		if err != nil {
			t.Fatal(err)
		}
		if task.TagID == nil || *task.TagID != t1.ID {
			t.Errorf("tagId = %v, want %d", task.TagID, t1.ID)
		}
		if !equalIDs(tagIDsOf(task), []int64{t1.ID}) {
			t.Errorf("tags = %v", tagIDsOf(task))
		}
	})

	t.Run("legacy tagId field", func(t *testing.T) {
		task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "legacy", TagID: &t2.ID})
		if err != nil {
			t.Fatal(err)
		}
		if task.TagID == nil || *task.TagID != t2.ID || !equalIDs(tagIDsOf(task), []int64{t2.ID}) {
			t.Errorf("unexpected task %+v", task)
		}
	})

	t.Run("zero tagId means no tag", func(t *testing.T) {
		var req ports.CreateTaskRequest
		if err := json.Unmarshal([]byte(`{"title": "untagged", "tagId": 0}`), &req); err != nil {
			t.Fatal(err)
		}
		task, err := env.tasks.CreateTask(ctx, uid, req)
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		if task.TagID != nil || len(task.Tags) != 0 {
			t.Errorf("unexpected task %+v", task)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "dup", TagIDs: []int64{t1.ID, t1.ID}})
		if err != nil {
			t.Fatal(err)
		}
		if task.TagID == nil || len(task.Tags) != 1 {
			t.Errorf("unexpected task %+v", task)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "bare", DueDate: strPtr("")})
		if err != nil {
			t.Fatal(err)
		}
		if task.Description == nil || *task.Description != "" || task.DueDate != nil || bool(task.Completed) {
			t.Errorf("unexpected defaults %+v", task)
		}
		if task.Tags == nil || len(task.Tags) != 0 {
			t.Errorf("tags = %v, want empty", task.Tags)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "  "})
		assertKind(t, err, entities.ErrValidation)

		_, err = env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "x", TagIDs: []int64{t1.ID, 9999}})
		assertKind(t, err, entities.ErrBadRequest)
	})
}

func TestTaskTagsAcrossUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")
	foreign := env.tag(t, b, "theirs")

	_, err := env.tasks.CreateTask(ctx, a, ports.CreateTaskRequest{Title: "x", TagIDs: []int64{foreign.ID}})
	assertKind(t, err, entities.ErrBadRequest)

	task, err := env.tasks.CreateTask(ctx, a, ports.CreateTaskRequest{Title: "mine"})
	if err != nil {
		t.Fatal(err)
	}

	var upd ports.UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"tagIds":[`+itoa(foreign.ID)+`]}`), &upd); err != nil {
		t.Fatal(err)
	}
	_, err = env.tasks.UpdateTask(ctx, a, task.ID, upd)
	assertKind(t, err, entities.ErrBadRequest)

	t.Run("other user sees not found", func(t *testing.T) {
		_, err := env.tasks.GetTask(ctx, b, task.ID)
		assertKind(t, err, entities.ErrNotFound)

		_, err = env.tasks.UpdateTask(ctx, b, task.ID, ports.UpdateTaskRequest{Title: ports.Some("hijack")})
		assertKind(t, err, entities.ErrNotFound)

		err = env.tasks.DeleteTask(ctx, b, task.ID)
		assertKind(t, err, entities.ErrNotFound)

		list, err := env.tasks.ListTasks(ctx, b)
		if err != nil || len(list) != 0 {
			t.Errorf("ListTasks(b) = %v, %v", list, err)
		}

		got, err := env.tasks.GetTask(ctx, a, task.ID)
		if err != nil || got.Title != "mine" {
			t.Errorf("task changed: %+v, %v", got, err)
		}
	})
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	uid := env.register(t, "a@x.com")
	t1 := env.tag(t, uid, "one")
	t2 := env.tag(t, uid, "two")

	task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{
		Title:       "original",
		Description: strPtr("desc"),
		DueDate:     strPtr("2024-01-01"),
		TagIDs:      []int64{t1.ID, t2.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	update := func(t *testing.T, body string) *entities.Task {
		t.Helper()
		var req ports.UpdateTaskRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatal(err)
		}
		got, err := env.tasks.UpdateTask(ctx, uid, task.ID, req)
		if err != nil {
			t.Fatalf("UpdateTask(%s) error = %v", body, err)
		}
		return got
	}

	t.Run("omitted fields keep values", func(t *testing.T) {
		got := update(t, `{"completed": 1}`)
		if !bool(got.Completed) || got.Title != "original" || *got.Description != "desc" || *got.DueDate != "2024-01-01" {
			t.Errorf("unexpected task %+v", got)
		}
		if len(got.Tags) != 2 {
			t.Errorf("tags = %v", tagIDsOf(got))
		}
	})

	t.Run("explicit null clears", func(t *testing.T) {
		got := update(t, `{"dueDate": null, "description": null}`)
		if got.DueDate != nil || got.Description != nil {
			t.Errorf("unexpected task %+v", got)
		}
	})

	t.Run("tag list replaces", func(t *testing.T) {
		got := update(t, `{"tagIds": [`+itoa(t2.ID)+`]}`)
		if !equalIDs(tagIDsOf(got), []int64{t2.ID}) || got.TagID == nil || *got.TagID != t2.ID {
			t.Errorf("unexpected task %+v", got)
		}
	})

	t.Run("empty tag list clears", func(t *testing.T) {
		update(t, `{"tagIds": []}`)

		list, err := env.tasks.ListTasks(ctx, uid)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || len(list[0].Tags) != 0 || list[0].TagID != nil {
			t.Errorf("unexpected list %+v", list)
		}
	})

	t.Run("blank title rejected", func(t *testing.T) {
		var req ports.UpdateTaskRequest
		_ = json.Unmarshal([]byte(`{"title": ""}`), &req)
		_, err := env.tasks.UpdateTask(ctx, uid, task.ID, req)
		assertKind(t, err, entities.ErrValidation)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := env.tasks.UpdateTask(ctx, uid, 9999, ports.UpdateTaskRequest{})
		assertKind(t, err, entities.ErrNotFound)
	})
}

func TestLegacyTagFallback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	uid := env.register(t, "a@x.com")
	t1 := env.tag(t, uid, "one")
	t2 := env.tag(t, uid, "two")

	// Rows written before the join table existed carry only tasks.tagId
	legacy := &entities.Task{Title: "old", TagID: &t1.ID, UserID: uid}
	if err := env.repos.tasks.Create(ctx, legacy); err != nil {
		t.Fatal(err)
	}
	// Join rows win over the legacy column when both exist
	mixed := &entities.Task{Title: "mixed", TagID: &t1.ID, UserID: uid}
	if err := env.repos.tasks.Create(ctx, mixed); err != nil {
		t.Fatal(err)
	}
	if err := env.repos.taskTags.Add(ctx, mixed.ID, []int64{t2.ID}); err != nil {
		t.Fatal(err)
	}

	list, err := env.tasks.ListTasks(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if !equalIDs(tagIDsOf(list[0]), []int64{t1.ID}) {
		t.Errorf("legacy task tags = %v", tagIDsOf(list[0]))
	}
	if !equalIDs(tagIDsOf(list[1]), []int64{t2.ID}) {
		t.Errorf("mixed task tags = %v", tagIDsOf(list[1]))
	}
}

func TestDeleteTag(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	uid := env.register(t, "a@x.com")
	t1 := env.tag(t, uid, "one")
	t2 := env.tag(t, uid, "two")

	single, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "single", TagIDs: []int64{t1.ID}})
	if err != nil {
		t.Fatal(err)
	}
	multi, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "multi", TagIDs: []int64{t1.ID, t2.ID}})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.tags.DeleteTag(ctx, uid, t1.ID); err != nil {
		t.Fatalf("DeleteTag() error = %v", err)
	}

	got, err := env.tasks.GetTask(ctx, uid, single.ID)
	if err != nil {
		t.Fatalf("task must persist: %v", err)
	}
	if got.TagID != nil || len(got.Tags) != 0 {
		t.Errorf("single task still tagged: %+v", got)
	}

	got, err = env.tasks.GetTask(ctx, uid, multi.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !equalIDs(tagIDsOf(got), []int64{t2.ID}) {
		t.Errorf("multi task tags = %v", tagIDsOf(got))
	}
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)
	uid := env.register(t, "a@x.com")
	t1 := env.tag(t, uid, "one")

	task, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "x", TagIDs: []int64{t1.ID}})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.tasks.DeleteTask(ctx, uid, task.ID); err != nil {
		t.Fatal(err)
	}
	_, err = env.tasks.GetTask(ctx, uid, task.ID)
	assertKind(t, err, entities.ErrNotFound)

	joined, err := env.repos.taskTags.TagsForTasks(ctx, []int64{task.ID})
	if err != nil || len(joined) != 0 {
		t.Errorf("join rows left: %v, %v", joined, err)
	}

	// The tag itself survives
	if _, err := env.tags.GetTag(ctx, uid, t1.ID); err != nil {
		t.Errorf("tag removed with task: %v", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)

	if _, err := env.auth.Register(ctx, ports.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}
	login, err := env.auth.Login(ctx, ports.LoginRequest{Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	uid, err := env.auth.ValidateToken(login.Token)
	if err != nil {
		t.Fatal(err)
	}

	folder, err := env.folders.CreateFolder(ctx, uid, ports.CreateFolderRequest{Name: "Work"})
	if err != nil {
		t.Fatal(err)
	}
	tag, err := env.tags.CreateTag(ctx, uid, ports.CreateTagRequest{Name: "urgent", FolderID: &folder.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.tasks.CreateTask(ctx, uid, ports.CreateTaskRequest{Title: "Ship it", TagIDs: []int64{tag.ID}}); err != nil {
		t.Fatal(err)
	}

	list, err := env.tasks.ListTasks(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Ship it" {
		t.Fatalf("unexpected list %+v", list)
	}
	if len(list[0].Tags) != 1 || list[0].Tags[0].Name != "urgent" {
		t.Errorf("tags = %+v", list[0].Tags)
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
