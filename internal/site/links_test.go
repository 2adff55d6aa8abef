package site

import (
	"errors"
	"strings"
	"testing"
)

func TestLinkTable_Resolve(t *testing.T) {
	t.Parallel()

	tree := scan(t,
		"index.md",
		"notes/index.md",
		"notes/a.md",
		"notes/my note.md",
		"notes/deep/c.md",
		"notes/deep/a.md",
		"journal/journal.md",
		"journal/2024.md",
		"media/pic.png",
		"notes/pic.jpg",
	)
	lt := tree.Links()

	tests := []struct {
		name   string
		source string
		ref    string
		want   string
		wantOK bool
	}{
		{name: "sibling stem", source: "notes/a.md", ref: "my note", want: "notes/my note.html", wantOK: true},
		{name: "sibling file name", source: "notes/a.md", ref: "my note.md", want: "notes/my note.html", wantOK: true},
		{name: "relative path", source: "notes/a.md", ref: "deep/c", want: "notes/deep/c.html", wantOK: true},
		{name: "relative path with extension", source: "notes/a.md", ref: "deep/c.md", want: "notes/deep/c.html", wantOK: true},
		{name: "parent relative", source: "notes/deep/c.md", ref: "../a.md", want: "notes/a.html", wantOK: true},
		{name: "page-relative wins over ambiguous name", source: "notes/deep/c.md", ref: "a", want: "notes/deep/a.html", wantOK: true},
		{name: "root relative", source: "notes/deep/c.md", ref: "/journal/2024", want: "journal/2024.html", wantOK: true},
		{name: "path from root", source: "notes/deep/c.md", ref: "journal/2024.md", want: "journal/2024.html", wantOK: true},
		{name: "unique name anywhere", source: "notes/deep/c.md", ref: "2024", want: "journal/2024.html", wantOK: true},
		{name: "asset name", source: "journal/2024.md", ref: "pic.png", want: "media/pic.png", wantOK: true},
		{name: "asset path", source: "journal/2024.md", ref: "../media/pic.png", want: "media/pic.png", wantOK: true},
		{name: "section name", source: "notes/a.md", ref: "journal", want: "journal/journal.html", wantOK: true},
		{name: "section path with slash", source: "index.md", ref: "notes/", want: "notes/index.html", wantOK: true},
		{name: "unknown name", source: "notes/a.md", ref: "missing", wantOK: false},
		{name: "escaping root", source: "index.md", ref: "../outside.md", wantOK: false},
		{name: "empty", source: "index.md", ref: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := lt.Resolve(tt.source, tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q, %q) = (%q, %v), want (%q, %v)", tt.source, tt.ref, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLinkTable_Ambiguous(t *testing.T) {
	t.Parallel()

	tree := scan(t, "x/a.md", "y/a.md", "z/b.md")

	_, _, err := tree.Links().Resolve("z/b.md", "a")
	if !errors.Is(err, ErrAmbiguousLink) {
		t.Fatalf("error = %v, want ErrAmbiguousLink", err)
	}
	for _, candidate := range []string{"x/a.html", "y/a.html"} {
		if !strings.Contains(err.Error(), candidate) {
			t.Errorf("error = %q, want candidate %s listed", err, candidate)
		}
	}
}

func TestLinkTable_DescriptorNamedAfterDirIsNotAmbiguous(t *testing.T) {
	t.Parallel()

	tree := scan(t, "journal/journal.md", "other.md")

	got, ok, err := tree.Links().Resolve("other.md", "journal")
	if err != nil || !ok || got != "journal/journal.html" {
		t.Errorf("Resolve() = (%q, %v, %v), want journal/journal.html", got, ok, err)
	}
}
