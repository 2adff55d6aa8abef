package main

// Notes:
// - exitCodeFor: every sentinel the build can surface, alone and wrapped the
//   way the build wraps them (StageError, PageError, fmt.Errorf %w).
// - hintFor: only that a hint is attached or not; the wording lives in
//   internal/hints.

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/media"
	"github.com/alnah/go-md2site/internal/workspace"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	pageErr := func(err error) error {
		return &md2site.StageError{Stage: stageGenerate, Err: &md2site.PageError{Path: "a.md", Err: err}}
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Media errors (exit 4)
		{"process error", &media.ProcessError{Path: "x.png", Err: os.ErrPermission}, ExitMedia},
		{"mogrify missing", media.ErrMogrifyNotFound, ExitMedia},
		{"media stage", &md2site.StageError{Stage: stageMedia, Err: &media.ProcessError{Path: "x.png", Err: errors.New("bad")}}, ExitMedia},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"source not found", &md2site.StageError{Stage: stagePrepare, Err: workspace.ErrSourceNotFound}, ExitIO},
		{"not a directory", fileutil.ErrNotDirectory, ExitIO},
		{"write output", md2site.ErrWriteOutput, ExitIO},
		{"static not found", md2site.ErrStaticNotFound, ExitIO},

		// Usage/config/template errors (exit 2)
		{"usage", fmt.Errorf("%w: unknown flag", ErrUsage), ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"env file", ErrEnvFile, ExitUsage},
		{"config not found", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field invalid", config.ErrFieldInvalid, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"workspace overlap", &md2site.StageError{Stage: stagePrepare, Err: workspace.ErrOverlap}, ExitUsage},
		{"no output", workspace.ErrNoOutput, ExitUsage},
		{"marker missing", md2site.ErrTemplateMarkerMissing, ExitUsage},
		{"marker unknown", md2site.ErrTemplateMarkerUnknown, ExitUsage},
		{"template set not found", md2site.ErrTemplateSetNotFound, ExitUsage},
		{"template read", fmt.Errorf("%w: %w", md2site.ErrTemplateRead, os.ErrNotExist), ExitUsage},
		{"invalid asset path", md2site.ErrInvalidAssetPath, ExitUsage},

		// Content and unexpected errors (exit 1)
		{"unknown local link", pageErr(md2site.ErrUnknownLocalLink), ExitGeneral},
		{"ambiguous link", pageErr(md2site.ErrAmbiguousLink), ExitGeneral},
		{"front matter", pageErr(md2site.ErrFrontMatter), ExitGeneral},
		{"unsupported embed", pageErr(md2site.ErrUnsupportedEmbed), ExitGeneral},
		{"output collision", md2site.ErrOutputCollision, ExitGeneral},
		{"static collision", md2site.ErrStaticCollision, ExitGeneral},
		{"internal", md2site.ErrInternal, ExitGeneral},
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("conventional codes = %d/%d/%d, want 0/1/2", ExitSuccess, ExitGeneral, ExitUsage)
	}
	for name, code := range map[string]int{"ExitIO": ExitIO, "ExitMedia": ExitMedia} {
		if code >= 126 {
			t.Errorf("%s = %d, should be < 126", name, code)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Hint selection
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{name: "nil", err: nil},
		{name: "unknown error", err: errors.New("boom")},
		{name: "mogrify missing", err: media.ErrMogrifyNotFound, wantHint: "native"},
		{name: "config not found", err: config.ErrConfigNotFound, wantHint: "--config"},
		{name: "overlap", err: workspace.ErrOverlap, wantHint: "outside the notes"},
		{name: "marker missing", err: md2site.ErrTemplateMarkerMissing, wantHint: "body"},
		{name: "set not found", err: md2site.ErrTemplateSetNotFound, wantHint: "default"},
		{name: "unknown link", err: pageError(md2site.ErrUnknownLocalLink), wantHint: "--strict"},
		{name: "ambiguous link", err: pageError(md2site.ErrAmbiguousLink), wantHint: "hint:"},
		{name: "write output", err: md2site.ErrWriteOutput, wantHint: "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.wantHint == "" {
				if got != "" {
					t.Errorf("hintFor(%v) = %q, want no hint", tt.err, got)
				}
				return
			}
			if !strings.Contains(got, tt.wantHint) {
				t.Errorf("hintFor(%v) = %q, want it to mention %q", tt.err, got, tt.wantHint)
			}
		})
	}
}

func pageError(err error) error {
	return &md2site.PageError{Path: "notes/a.md", Err: err}
}
