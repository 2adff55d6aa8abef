package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes", "a.md"), "# A")

	w, err := NewWatcher([]string{dir}, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { changed <- struct{}{} }) }()

	writeFile(t, filepath.Join(dir, "notes", "a.md"), "# A edited")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after a write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWatcher_Debounces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWatcher([]string{dir}, 200*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	go func() { _ = w.Run(ctx, func() { changed <- struct{}{} }) }()

	for i := range 5 {
		if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after writes")
	}
	select {
	case <-changed:
		t.Error("burst of writes triggered more than one rebuild")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestNewWatcher_MissingPath(t *testing.T) {
	t.Parallel()

	if _, err := NewWatcher([]string{filepath.Join(t.TempDir(), "nope")}, time.Millisecond, nil); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestWatcher_FileSurvivesReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmpl := filepath.Join(dir, "page.html")
	writeFile(t, tmpl, "{{ body }}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")

	w, err := NewWatcher([]string{tmpl}, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	go func() { _ = w.Run(ctx, func() { changed <- struct{}{} }) }()

	writeFile(t, filepath.Join(dir, "notes.txt"), "still unrelated")
	select {
	case <-changed:
		t.Fatal("a sibling of the watched file triggered a rebuild")
	case <-time.After(300 * time.Millisecond):
	}

	// Save the way editors do: write a temporary file, rename it over the original.
	for i := range 2 {
		tmp := filepath.Join(dir, "page.html.tmp")
		writeFile(t, tmp, fmt.Sprintf("{{ body }} %d", i))
		if err := os.Rename(tmp, tmpl); err != nil {
			t.Fatalf("rename: %v", err)
		}
		select {
		case <-changed:
		case <-time.After(5 * time.Second):
			t.Fatalf("save %d by rename not seen", i+1)
		}
	}
}
