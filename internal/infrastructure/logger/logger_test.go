package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tasknest/core/internal/infrastructure/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.WithComponent("tasks").LogUserAction(42, "create_task", map[string]interface{}{"task_id": 7})
	l.LogSecurityEvent("invalid_token", 0, "127.0.0.1", nil)
	_ = l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"action":"create_task"`, `"component":"tasks"`, `"security_event":"invalid_token"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
