package md2site

import (
	"go.uber.org/zap"

	"github.com/alnah/go-md2site/internal/logging"
)

// Option configures a Generator.
type Option func(*Generator)

type generatorConfig struct {
	template       string
	hasTemplate    bool
	templateFile   string
	templateSet    string
	assetPath      string
	siteName       string
	siteURL        string
	strict         bool
	allowHTML      bool
	workers        int
	extensions     []string
	highlightStyle string
}

// WithTemplate uses content as the page template.
func WithTemplate(content string) Option {
	return func(g *Generator) {
		g.cfg.template = content
		g.cfg.hasTemplate = true
	}
}

// WithTemplateFile reads the page template from path.
func WithTemplateFile(path string) Option {
	return func(g *Generator) { g.cfg.templateFile = path }
}

// WithTemplateSet selects a named template set (page and partials).
// Custom sets are looked up under the asset path first.
func WithTemplateSet(name string) Option {
	return func(g *Generator) { g.cfg.templateSet = name }
}

// WithAssetPath sets a directory of custom template sets, laid out as
// <path>/templates/<name>/{page,nav,listing,header}.html.
// Missing sets fall back to the embedded ones.
func WithAssetPath(path string) Option {
	return func(g *Generator) { g.cfg.assetPath = path }
}

// WithSite sets the values of the site_name and site_url markers.
func WithSite(name, url string) Option {
	return func(g *Generator) {
		g.cfg.siteName = name
		g.cfg.siteURL = url
	}
}

// WithStrict makes unresolved local links fail the build.
func WithStrict(strict bool) Option {
	return func(g *Generator) { g.cfg.strict = strict }
}

// WithAllowHTML keeps raw HTML from notes, sanitized.
func WithAllowHTML(allow bool) Option {
	return func(g *Generator) { g.cfg.allowHTML = allow }
}

// WithWorkers bounds the number of pages processed at once.
// 0 picks a value from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.cfg.workers = n }
}

// WithContentExtensions sets the extensions of files converted to pages.
func WithContentExtensions(exts ...string) Option {
	return func(g *Generator) { g.cfg.extensions = append([]string(nil), exts...) }
}

// WithHighlightStyle sets the chroma style for code blocks.
func WithHighlightStyle(name string) Option {
	return func(g *Generator) { g.cfg.highlightStyle = name }
}

// WithLogger sets the logger. Nil means no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logging.OrNop(logger) }
}
