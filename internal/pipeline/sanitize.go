package pipeline

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var checkboxType = regexp.MustCompile(`^checkbox$`)

// Sanitizer removes unsafe markup from an HTML fragment.
type Sanitizer interface {
	Sanitize(fragment string) string
}

// UGCSanitizer applies bluemonday's user-generated-content policy, widened
// for what notes legitimately contain: highlighted code, media, marks and
// task lists. It is safe for concurrent use.
type UGCSanitizer struct {
	policy *bluemonday.Policy
}

// NewUGCSanitizer creates the sanitizer used when raw HTML is allowed.
func NewUGCSanitizer() *UGCSanitizer {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowElements("mark", "figure", "figcaption")
	p.AllowAttrs("controls", "poster", "src", "width", "height").OnElements("video", "audio")
	p.AllowAttrs("src", "type").OnElements("source")
	p.AllowAttrs("loading").OnElements("img")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	// chroma inline styles
	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").Globally()
	// Internal links stay follow-able; only absolute URLs get rel=nofollow.
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	return &UGCSanitizer{policy: p}
}

// Sanitize returns the fragment with disallowed elements and attributes removed.
func (s *UGCSanitizer) Sanitize(fragment string) string {
	return s.policy.Sanitize(fragment)
}

// NopSanitizer returns fragments unchanged. Used when raw HTML is disabled,
// since goldmark then omits raw HTML itself.
type NopSanitizer struct{}

// Sanitize returns fragment unchanged.
func (NopSanitizer) Sanitize(fragment string) string { return fragment }
