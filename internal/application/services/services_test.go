package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/core/internal/adapters/repository"
	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/infrastructure/storage"
	"github.com/tasknest/core/internal/ports"
)

type testEnv struct {
	db      *database.DB
	auth    *AuthService
	tasks   *TaskService
	tags    *TagService
	folders *FolderService
	uploads *UploadService
	store   *storage.LocalStore
	repos   struct {
		users    ports.UserRepository
		tasks    ports.TaskRepository
		tags     ports.TagRepository
		taskTags ports.TaskTagRepository
		folders  ports.FolderRepository
	}
}

func newTestEnv(t *testing.T, mirror bool) *testEnv {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "services.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{db: db, store: store}
	env.repos.users = repository.NewUserRepository(db.DB)
	env.repos.tasks = repository.NewTaskRepository(db.DB)
	env.repos.tags = repository.NewTagRepository(db.DB)
	env.repos.taskTags = repository.NewTaskTagRepository(db.DB)
	env.repos.folders = repository.NewFolderRepository(db.DB)

	log := logger.NewNop()
	env.auth = NewAuthService(env.repos.users,
		config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour},
		config.SecurityConfig{BcryptCost: bcrypt.MinCost, PlainPasswordMirror: mirror},
		log)
	env.tasks = NewTaskService(env.repos.tasks, env.repos.tags, env.repos.taskTags, store, log)
	env.tags = NewTagService(env.repos.tags, env.repos.folders, env.repos.tasks, env.repos.taskTags, log)
	env.folders = NewFolderService(env.repos.folders, env.repos.tags, log)
	env.uploads = NewUploadService(env.repos.tasks, store, env.auth, config.UploadConfig{MaxBytes: 1 << 20}, log)

	return env
}

func (e *testEnv) register(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.auth.Register(context.Background(), ports.RegisterRequest{Name: "User", Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u.ID
}

func (e *testEnv) tag(t *testing.T, userID int64, name string) *entities.Tag {
	t.Helper()
	tag, err := e.tags.CreateTag(context.Background(), userID, ports.CreateTagRequest{Name: name})
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return tag
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want kind %v", err, kind)
	}
}

func strPtr(s string) *string { return &s }

func tagIDsOf(task *entities.Task) []int64 {
	ids := make([]int64, 0, len(task.Tags))
	for _, tag := range task.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
