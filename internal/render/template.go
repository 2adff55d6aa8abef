package render

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// Marker names recognized in page templates.
const (
	MarkerTitle       = "title"
	MarkerBody        = "body"
	MarkerDescription = "description"
	MarkerSiteName    = "site_name"
	MarkerSiteURL     = "site_url"
	MarkerNav         = "nav"
	MarkerHeader      = "header"
	MarkerChildren    = "children"
	MarkerRoot        = "root"
)

// RequiredMarkers must appear at least once in every page template.
var RequiredMarkers = []string{MarkerTitle, MarkerBody}

// OptionalMarkers may appear any number of times.
var OptionalMarkers = []string{
	MarkerDescription, MarkerSiteName, MarkerSiteURL,
	MarkerNav, MarkerHeader, MarkerChildren, MarkerRoot,
}

// markerPattern matches {{name}} with optional inner whitespace. Anything that
// is not a bare identifier (e.g. {{ .Field }}) is left as literal text.
var markerPattern = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_-]*)\s*\}\}`)

// Values are the per-page substitutions.
type Values struct {
	Title       string // text
	Description string // text
	SiteName    string // text
	SiteURL     string // text
	Root        string // relative path to the output root, e.g. "../"
	Body        string // HTML
	Nav         string // HTML
	Header      string // HTML
	Children    string // HTML
}

// segment is either literal text or a marker reference.
type segment struct {
	text   string
	marker string
}

// Template is a parsed page template. It is immutable and safe for
// concurrent use.
type Template struct {
	segments []segment
	used     map[string]bool
}

// Parse splits content into literal text and markers. It fails with
// ErrMarkerUnknown on a marker outside the known set and ErrMarkerMissing
// when a required marker is absent.
func Parse(content string) (*Template, error) {
	known := make(map[string]bool, len(RequiredMarkers)+len(OptionalMarkers))
	for _, name := range RequiredMarkers {
		known[name] = true
	}
	for _, name := range OptionalMarkers {
		known[name] = true
	}

	t := &Template{used: make(map[string]bool)}
	last := 0
	for _, loc := range markerPattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[loc[2]:loc[3]]
		if !known[name] {
			line := 1 + strings.Count(content[:loc[0]], "\n")
			return nil, fmt.Errorf("%w: %q at line %d", ErrMarkerUnknown, name, line)
		}
		if loc[0] > last {
			t.segments = append(t.segments, segment{text: content[last:loc[0]]})
		}
		t.segments = append(t.segments, segment{marker: name})
		t.used[name] = true
		last = loc[1]
	}
	if last < len(content) {
		t.segments = append(t.segments, segment{text: content[last:]})
	}

	var missing []string
	for _, name := range RequiredMarkers {
		if !t.used[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMarkerMissing, strings.Join(missing, ", "))
	}

	return t, nil
}

// Uses reports whether the template references the named marker.
// The generator skips building navigation or listings nobody displays.
func (t *Template) Uses(name string) bool {
	return t.used[name]
}

// Execute writes the template with v substituted to w.
func (t *Template) Execute(w io.Writer, v Values) error {
	for _, seg := range t.segments {
		s := seg.text
		if seg.marker != "" {
			s = v.lookup(seg.marker)
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the template with v substituted.
func (t *Template) Render(v Values) []byte {
	var sb strings.Builder
	_ = t.Execute(&sb, v) // strings.Builder never fails
	return []byte(sb.String())
}

func (v Values) lookup(marker string) string {
	switch marker {
	case MarkerTitle:
		return html.EscapeString(v.Title)
	case MarkerDescription:
		return html.EscapeString(v.Description)
	case MarkerSiteName:
		return html.EscapeString(v.SiteName)
	case MarkerSiteURL:
		return html.EscapeString(v.SiteURL)
	case MarkerRoot:
		return html.EscapeString(v.Root)
	case MarkerBody:
		return v.Body
	case MarkerNav:
		return v.Nav
	case MarkerHeader:
		return v.Header
	case MarkerChildren:
		return v.Children
	}
	return ""
}
