package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsModelFile(t *testing.T) {
	for _, tt := range []struct {
		path string
		want bool
	}{
		{"cube.obj", true},
		{"CUBE.OBJ", true},
		{"dir/model.obj", true},
		{"texture.png", false},
		{"model.obj.bak", false},
		{"", false},
	} {
		if got := IsModelFile(tt.path); got != tt.want {
			t.Errorf("IsModelFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcherReportsPreexistingModels(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "teapot.obj")
	if err := os.WriteFile(model, []byte("v 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	seen := make(chan string, 4)
	w, err := NewWatcher(dir, func(path string) { seen <- path })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Shutdown()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-seen:
		if got != model {
			t.Errorf("reported %q, want %q", got, model)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pre-existing model never reported")
	}

	select {
	case got := <-seen:
		t.Errorf("unexpected extra report %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherReportsDroppedModelOnce(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 8)
	w, err := NewWatcher(dir, func(path string) { seen <- path })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Shutdown()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	model := filepath.Join(dir, "drop.obj")
	if err := os.WriteFile(model, []byte("v 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-seen:
		if got != model {
			t.Errorf("reported %q, want %q", got, model)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dropped model never reported")
	}

	// A write to the same path after the create must not report again.
	if err := os.WriteFile(model, []byte("v 1 1 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-seen:
		t.Errorf("duplicate report %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}
