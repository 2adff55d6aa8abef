// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForMogrifyMissing returns hints for a missing ImageMagick binary.
func ForMogrifyMissing() string {
	hints := []string{"use --media-processor native"}
	if IsInContainer() {
		hints = append([]string{"add imagemagick to the container image"}, hints...)
	} else {
		hints = append([]string{"install ImageMagick"}, hints...)
	}
	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/md2site/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/md2site") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForWorkspaceOverlap returns hints when output and notes directories overlap.
func ForWorkspaceOverlap() string {
	return format("choose an output directory outside the notes directory")
}

// ForTemplateMarkers returns hints for a template missing required markers
// or using unknown ones.
func ForTemplateMarkers(required, optional []string) string {
	if len(required) == 0 {
		return ""
	}
	hint := "required markers: " + joinMarkers(required)
	if len(optional) > 0 {
		hint += "; optional: " + joinMarkers(optional)
	}
	return format(hint)
}

// ForTemplateNotFound returns hints for template not found errors.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForUnknownLink returns hints for unresolved links in strict mode.
func ForUnknownLink() string {
	return format("fix the link target or build without --strict")
}

// ForAmbiguousLink returns hints for links whose name matches several files.
func ForAmbiguousLink() string {
	return format("link with a path relative to the note, e.g. [[dir/name]]")
}

func joinMarkers(names []string) string {
	marked := make([]string, len(names))
	for i, n := range names {
		marked[i] = "{{ " + n + " }}"
	}
	return strings.Join(marked, ", ")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
