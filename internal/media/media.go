// Package media post-processes the images of a built site in place:
// downsizing to a bounding box and recompressing.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// ImageExtensions are the file extensions ProcessDir hands to a Processor.
var ImageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// Processor rewrites one image file in place.
type Processor interface {
	Process(ctx context.Context, path string) error
}

// ProcessError names the file a Processor failed on.
type ProcessError struct {
	Path string // relative to the processed directory
	Err  error
}

func (e *ProcessError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *ProcessError) Unwrap() error { return e.Err }

// NopProcessor leaves every file untouched.
type NopProcessor struct{}

// Process does nothing.
func (NopProcessor) Process(context.Context, string) error { return nil }

// ProcessDir runs proc on every visible image under dir with at most workers
// files in flight, and returns the number of images found. The first failure
// cancels the rest and is returned as a *ProcessError. A missing dir is not
// an error.
func ProcessDir(ctx context.Context, dir string, proc Processor, workers int) (int, error) {
	if !fileutil.DirExists(dir) {
		if fileutil.FileExists(dir) {
			return 0, fmt.Errorf("%s: %w", dir, fileutil.ErrNotDirectory)
		}
		return 0, nil
	}

	var images []string
	err := fileutil.WalkVisible(ctx, dir, func(rel string, d fs.DirEntry) error {
		if d.Type().IsRegular() && ImageExtensions[strings.ToLower(path.Ext(rel))] {
			images = append(images, rel)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, rel := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := proc.Process(gctx, filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
				return &ProcessError{Path: rel, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var pe *ProcessError
		if !errors.As(err, &pe) && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, err
	}
	return len(images), nil
}
