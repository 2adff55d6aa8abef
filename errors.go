package md2site

import (
	"errors"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/render"
	"github.com/alnah/go-md2site/internal/site"
)

// Sentinel errors for library operations.
var (
	ErrInvalidWorkspace = errors.New("invalid workspace")
	ErrTemplateRead     = errors.New("failed to read template")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrStaticNotFound   = errors.New("static directory not found")
	ErrStaticCollision  = errors.New("static file collides with generated output")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrInternal         = errors.New("internal error")

	// Template errors.
	ErrTemplateMarkerMissing = render.ErrMarkerMissing
	ErrTemplateMarkerUnknown = render.ErrMarkerUnknown
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
	ErrTemplatePartial       = render.ErrPartialParse

	// Content errors.
	ErrUnknownLocalLink = pipeline.ErrUnknownLocalLink
	ErrAmbiguousLink    = site.ErrAmbiguousLink
	ErrUnsupportedEmbed = pipeline.ErrUnsupportedEmbed
	ErrFrontMatter      = pipeline.ErrFrontMatter
	ErrOutputCollision  = site.ErrOutputCollision
)

// PageError names the source file a page failed on.
type PageError struct {
	Path string // source path relative to the notes directory
	Err  error
}

func (e *PageError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *PageError) Unwrap() error { return e.Err }

// StageError names the build stage that failed: prepare, generate, media
// or commit.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// IsTemplateError reports whether err comes from a malformed or missing
// template, as opposed to content or I/O.
func IsTemplateError(err error) bool {
	for _, target := range []error{
		ErrTemplateMarkerMissing, ErrTemplateMarkerUnknown, ErrTemplateSetNotFound,
		ErrIncompleteTemplateSet, ErrTemplateRead, ErrTemplatePartial, ErrInvalidAssetPath,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
