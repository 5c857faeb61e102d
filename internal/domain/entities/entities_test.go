package entities

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFlagUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Flag
		wantErr bool
	}{
		{"true", true, false},
		{"false", false, false},
		{"1", true, false},
		{"0", false, false},
		{`"1"`, true, false},
		{"null", false, false},
		{"2", false, true},
		{`"yes"`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.in), &f)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f != tt.want {
				t.Errorf("got %v, want %v", f, tt.want)
			}
		})
	}
}

func TestFlagScanAndValue(t *testing.T) {
	var f Flag
	if err := f.Scan(int64(1)); err != nil || !f {
		t.Fatalf("Scan(1) = %v, %v", f, err)
	}
	if err := f.Scan(nil); err != nil || f {
		t.Fatalf("Scan(nil) = %v, %v", f, err)
	}
	if err := f.Scan([]byte("1")); err != nil || !f {
		t.Fatalf("Scan([]byte) = %v, %v", f, err)
	}
	if err := f.Scan(3.5); err == nil {
		t.Fatal("expected error scanning float")
	}

	v, _ := Flag(true).Value()
	if v != int64(1) {
		t.Errorf("Value(true) = %v", v)
	}
	v, _ = Flag(false).Value()
	if v != int64(0) {
		t.Errorf("Value(false) = %v", v)
	}
}

func TestFlagMarshalsAsBool(t *testing.T) {
	b, err := json.Marshal(Task{ID: 1, Title: "x", Completed: true})
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out["completed"] != true {
		t.Errorf("completed = %v", out["completed"])
	}
	if _, ok := out["tags"]; !ok {
		t.Error("expected tags key in task JSON")
	}
}

func TestBelongsTo(t *testing.T) {
	var nilTask *Task
	tests := []struct {
		name     string
		resource Owned
		userID   int64
		want     bool
	}{
		{"owner", &Task{UserID: 7}, 7, true},
		{"other user", &Task{UserID: 7}, 8, false},
		{"nil interface", nil, 7, false},
		{"nil pointer", nilTask, 7, false},
		{"unowned row", &Tag{UserID: 0}, 0, false},
		{"folder", &Folder{UserID: 3}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BelongsTo(tt.resource, tt.userID); got != tt.want {
				t.Errorf("BelongsTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	err := Validation("Tag name must be %d characters or less", MaxTagNameLength)
	if !errors.Is(err, ErrValidation) {
		t.Error("expected validation kind")
	}
	if err.Error() != "Tag name must be 20 characters or less" {
		t.Errorf("message = %q", err.Error())
	}

	if !errors.Is(ErrTaskNotFound, ErrNotFound) {
		t.Error("ErrTaskNotFound should be a not-found error")
	}
	if errors.Is(ErrInvalidTags, ErrNotFound) {
		t.Error("ErrInvalidTags should not be a not-found error")
	}
}
