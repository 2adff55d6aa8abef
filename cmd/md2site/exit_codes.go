package main

import (
	"errors"
	"os"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/media"
	"github.com/alnah/go-md2site/internal/render"
	"github.com/alnah/go-md2site/internal/workspace"
)

// Exit codes for md2site CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful build
	ExitGeneral = 1 // General/unexpected error, including content errors
	ExitUsage   = 2 // Invalid flags, config, or template
	ExitIO      = 3 // File not found, permission denied
	ExitMedia   = 4 // Image processing errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Media errors (exit 4), checked first: they often wrap I/O errors.
	var procErr *media.ProcessError
	if errors.As(err, &procErr) || errors.Is(err, media.ErrMogrifyNotFound) {
		return ExitMedia
	}

	// Usage/config/template errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrEnvFile) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrFieldInvalid) ||
		errors.Is(err, workspace.ErrOverlap) ||
		errors.Is(err, workspace.ErrNoOutput) ||
		md2site.IsTemplateError(err) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, workspace.ErrSourceNotFound) ||
		errors.Is(err, fileutil.ErrNotDirectory) ||
		errors.Is(err, md2site.ErrWriteOutput) ||
		errors.Is(err, md2site.ErrStaticNotFound) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, media.ErrMogrifyNotFound):
		return hints.ForMogrifyMissing()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(defaultConfigName))
	case errors.Is(err, workspace.ErrOverlap):
		return hints.ForWorkspaceOverlap()
	case errors.Is(err, md2site.ErrTemplateMarkerMissing), errors.Is(err, md2site.ErrTemplateMarkerUnknown):
		return hints.ForTemplateMarkers(render.RequiredMarkers, render.OptionalMarkers)
	case errors.Is(err, md2site.ErrTemplateSetNotFound):
		return hints.ForTemplateNotFound(assets.EmbeddedNames())
	case errors.Is(err, md2site.ErrUnknownLocalLink):
		return hints.ForUnknownLink()
	case errors.Is(err, md2site.ErrAmbiguousLink):
		return hints.ForAmbiguousLink()
	case errors.Is(err, md2site.ErrWriteOutput), errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}
