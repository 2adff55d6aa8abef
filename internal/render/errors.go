package render

import "errors"

// Sentinel errors for template operations.
var (
	ErrMarkerMissing = errors.New("template is missing required marker")
	ErrMarkerUnknown = errors.New("template uses unknown marker")
	ErrPartialParse  = errors.New("failed to parse partial template")
	ErrPartialExec   = errors.New("failed to render partial template")
)
