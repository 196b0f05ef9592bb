package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil)
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "plane.parm")
	if err := os.WriteFile(target, []byte("A, 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 4)
	w, err := NewWatcher(50*time.Millisecond, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{target}); err != nil {
		t.Fatal(err)
	}

	// Ignored by pattern.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	include := filepath.Join(dir, "common.param")
	if err := os.WriteFile(include, []byte("B, 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("A, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	timeout := time.After(3 * time.Second)
	for !(seen[target] && seen[include]) {
		select {
		case paths := <-changed:
			for _, p := range paths {
				if filepath.Base(p) == "notes.txt" {
					t.Errorf("unexpected change for %s", p)
				}
				seen[p] = true
			}
		case <-timeout:
			t.Fatalf("timed out waiting for changes, got %v", seen)
		}
	}
}

func TestMatches(t *testing.T) {
	w, err := NewWatcher(time.Millisecond, []string{"*.parm"}, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if !w.matches("/x/y/plane.parm") {
		t.Error("expected plane.parm to match")
	}
	if w.matches("/x/y/plane.param") {
		t.Error("expected plane.param not to match")
	}
}

func TestWatchExtendsWatchedSet(t *testing.T) {
	root := t.TempDir()
	vehicles := filepath.Join(root, "vehicles")
	common := filepath.Join(root, "common")
	for _, dir := range []string{vehicles, common} {
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	base := filepath.Join(common, "base.parm")
	if err := os.WriteFile(base, []byte("A, 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []string, 4)
	w, err := NewWatcher(50*time.Millisecond, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{filepath.Join(vehicles, "plane.parm")}); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch([]string{base, filepath.Join(root, "gone", "missing.parm")}); err != nil {
		t.Fatalf("second Watch failed: %v", err)
	}

	if err := os.WriteFile(base, []byte("A, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(3 * time.Second)
	for {
		select {
		case paths := <-changed:
			for _, p := range paths {
				if p == base {
					return
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for change in the included directory")
		}
	}
}
