package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-md2site/internal/fileutil"
)

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func newNotes(t *testing.T) (base, notes string) {
	t.Helper()
	base = t.TempDir()
	notes = filepath.Join(base, "notes")
	writeFile(t, filepath.Join(notes, "a.md"), "# A")
	writeFile(t, filepath.Join(notes, ".obsidian", "app.json"), "{}")
	return base, notes
}

func TestManager_Validate(t *testing.T) {
	t.Parallel()

	base, notes := newNotes(t)
	file := filepath.Join(base, "file.txt")
	writeFile(t, file, "x")

	tests := []struct {
		name    string
		source  string
		output  string
		opts    []Option
		wantErr error
	}{
		{name: "sibling output", source: notes, output: filepath.Join(base, "out")},
		{name: "missing source", source: filepath.Join(base, "nope"), output: filepath.Join(base, "out"), wantErr: ErrSourceNotFound},
		{name: "empty source", source: "", output: filepath.Join(base, "out"), wantErr: ErrSourceNotFound},
		{name: "source is a file", source: file, output: filepath.Join(base, "out"), wantErr: fileutil.ErrNotDirectory},
		{name: "empty output", source: notes, output: "", wantErr: ErrNoOutput},
		{name: "output is source", source: notes, output: notes, wantErr: ErrOverlap},
		{name: "output inside source", source: notes, output: filepath.Join(notes, "site"), wantErr: ErrOverlap},
		{name: "output contains source", source: notes, output: base, wantErr: ErrOverlap},
		{
			name:    "workspace inside notes",
			source:  notes,
			output:  filepath.Join(base, "out"),
			opts:    []Option{WithMirrorDir(filepath.Join(notes, "ws"))},
			wantErr: ErrOverlap,
		},
		{
			name:    "workspace inside output",
			source:  notes,
			output:  filepath.Join(base, "out"),
			opts:    []Option{WithMirrorDir(filepath.Join(base, "out", "ws"))},
			wantErr: ErrOverlap,
		},
		{
			name:   "workspace beside",
			source: notes,
			output: filepath.Join(base, "out"),
			opts:   []Option{WithMirrorDir(filepath.Join(base, "ws"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := New(tt.source, tt.output, tt.opts...).Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_Validate_SymlinkedOutput(t *testing.T) {
	t.Parallel()

	base, notes := newNotes(t)
	link := filepath.Join(base, "link")
	if err := os.Symlink(notes, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	err := New(notes, filepath.Join(link, "site")).Validate()
	if !errors.Is(err, ErrOverlap) {
		t.Errorf("error = %v, want ErrOverlap", err)
	}
}

func TestManager_Lifecycle(t *testing.T) {
	t.Parallel()

	base, notes := newNotes(t)
	output := filepath.Join(base, "out")
	writeFile(t, filepath.Join(output, "stale.html"), "old")

	m := New(notes, output)
	if err := m.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if got := readFile(t, filepath.Join(m.MirrorDir(), "a.md")); got != "# A" {
		t.Errorf("mirrored a.md = %q", got)
	}
	if fileutil.DirExists(filepath.Join(m.MirrorDir(), ".obsidian")) {
		t.Error("hidden directory was mirrored")
	}
	if filepath.Dir(m.StagingDir()) != base {
		t.Errorf("staging %s not next to output", m.StagingDir())
	}

	writeFile(t, filepath.Join(m.StagingDir(), "a.html"), "new")
	if err := m.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if got := readFile(t, filepath.Join(output, "a.html")); got != "new" {
		t.Errorf("a.html = %q, want new", got)
	}
	if fileutil.FileExists(filepath.Join(output, "stale.html")) {
		t.Error("previous output survived commit")
	}

	mirror := m.MirrorDir()
	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if fileutil.DirExists(mirror) {
		t.Error("ephemeral mirror not removed")
	}
	if !fileutil.DirExists(output) {
		t.Error("cleanup removed committed output")
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatalf("reading base: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "notes" && e.Name() != "out" {
			t.Errorf("leftover entry %s", e.Name())
		}
	}

	if err := m.Commit(); !errors.Is(err, ErrCommitted) {
		t.Errorf("second Commit() = %v, want ErrCommitted", err)
	}
}

func TestManager_FailedBuildKeepsOutput(t *testing.T) {
	t.Parallel()

	base, notes := newNotes(t)
	output := filepath.Join(base, "out")
	writeFile(t, filepath.Join(output, "index.html"), "published")

	m := New(notes, output)
	if err := m.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	staging := m.StagingDir()
	writeFile(t, filepath.Join(staging, "index.html"), "half-built")

	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if got := readFile(t, filepath.Join(output, "index.html")); got != "published" {
		t.Errorf("index.html = %q, want previous output untouched", got)
	}
	if fileutil.DirExists(staging) {
		t.Error("staging not removed")
	}
}

func TestManager_PersistentMirror(t *testing.T) {
	t.Parallel()

	base, notes := newNotes(t)
	ws := filepath.Join(base, "ws")
	writeFile(t, filepath.Join(ws, "leftover.md"), "old")

	m := New(notes, filepath.Join(base, "out"), WithMirrorDir(ws))
	if err := m.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if m.MirrorDir() != ws {
		t.Errorf("MirrorDir() = %s, want %s", m.MirrorDir(), ws)
	}
	if fileutil.FileExists(filepath.Join(ws, "leftover.md")) {
		t.Error("persistent workspace not wiped")
	}
	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if !fileutil.FileExists(filepath.Join(ws, "a.md")) {
		t.Error("persistent mirror removed by Cleanup")
	}
}

func TestManager_CommitBeforePrepare(t *testing.T) {
	t.Parallel()

	if err := New("a", "b").Commit(); !errors.Is(err, ErrNotPrepared) {
		t.Errorf("error = %v, want ErrNotPrepared", err)
	}
}

func TestManager_PrepareCancelled(t *testing.T) {
	t.Parallel()

	base, notes := newNotes(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(notes, filepath.Join(base, "out"))
	defer func() { _ = m.Cleanup() }()

	if err := m.Prepare(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
