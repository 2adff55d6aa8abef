package md2site

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/logging"
	"github.com/alnah/go-md2site/internal/pipeline"
	"github.com/alnah/go-md2site/internal/render"
	"github.com/alnah/go-md2site/internal/site"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---
	filePermissions = 0o644 // rw-r--r--
)

// DefaultContentExtensions are the extensions converted to pages when none
// are configured.
var DefaultContentExtensions = []string{".md", ".markdown"}

// DefaultHomeTitle titles the root index page when no site name is set and
// the page has neither a title nor a heading.
const DefaultHomeTitle = "Home"

// Workspace names the directories of one generation.
type Workspace struct {
	SourceDir string // notes to read (usually the mirror)
	OutputDir string // where pages and assets are written
	StaticDir string // copied into the output root; optional
}

// Page is a generated page.
type Page struct {
	Name            string   // file stem
	SourcePath      string   // relative to SourceDir, slash-separated
	OutputPath      string   // relative to OutputDir, slash-separated
	Title           string   // front matter > first h1 > humanized name
	Description     string   // front matter > first paragraph
	Header          string   // header image: output path or external URL
	HeaderCaption   string   // text shown under the header image
	Children        []string // listing order override
	Body            string   // HTML fragment
	UnresolvedLinks []string // local references that matched nothing
}

// Result lists what one generation produced, in lexical order of sources.
type Result struct {
	Pages  []Page
	Assets []string // copied pass-through files, relative to OutputDir
	Static []string // files copied from StaticDir, relative to OutputDir
}

// Generator converts a notes directory into a site.
// It is safe for concurrent use once created.
type Generator struct {
	cfg    generatorConfig
	logger *zap.Logger

	template *render.Template
	partials *render.Partials

	frontMatter  pipeline.FrontMatterParser
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	sanitizer    pipeline.Sanitizer
}

// NewGenerator loads and validates the template and partials.
// Template errors are reported here, before any file is touched.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.cfg.extensions) == 0 {
		g.cfg.extensions = append([]string(nil), DefaultContentExtensions...)
	}

	set, err := g.loadTemplateSet()
	if err != nil {
		return nil, err
	}
	g.template, err = render.Parse(set.Page)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", set.Name, err)
	}
	g.partials, err = render.NewPartials(set.Nav, set.Listing, set.Header)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", set.Name, err)
	}

	g.frontMatter = pipeline.YAMLFrontMatter{}
	g.preprocessor = &pipeline.CommonMarkPreprocessor{}
	g.converter = pipeline.NewGoldmarkConverter(
		pipeline.WithRawHTML(g.cfg.allowHTML),
		pipeline.WithHighlightStyle(g.cfg.highlightStyle),
	)
	g.sanitizer = pipeline.NopSanitizer{}
	if g.cfg.allowHTML {
		g.sanitizer = pipeline.NewUGCSanitizer()
	}
	return g, nil
}

// loadTemplateSet picks the partials from the named set and the page
// template from the explicit content or file when one is given.
func (g *Generator) loadTemplateSet() (*assets.TemplateSet, error) {
	resolver, err := assets.NewAssetResolver(g.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAssetPath, err)
	}

	name := g.cfg.templateSet
	if name == "" {
		name = assets.DefaultTemplateSetName
	}
	set, err := resolver.LoadTemplateSet(name)
	if err != nil {
		return nil, err
	}

	switch {
	case g.cfg.hasTemplate:
		set.Page = g.cfg.template
		set.Name = "(inline)"
	case g.cfg.templateFile != "":
		data, err := os.ReadFile(g.cfg.templateFile) // #nosec G304 -- template path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplateRead, err)
		}
		set.Page = string(data)
		set.Name = g.cfg.templateFile
	}
	g.logger.Debug("template loaded",
		zap.String("template", set.Name),
		zap.Bool("custom_sets", resolver.HasCustomLoader()))
	return set, nil
}

// pageState carries a page between the convert and render phases.
type pageState struct {
	page   *site.Page
	meta   pipeline.Meta
	title  string
	desc   string
	body   string
	header string // output path or external URL, empty when none
	lost   []string
}

// Generate builds the site from ws.SourceDir into ws.OutputDir.
// Any per-file failure aborts the whole generation with a *PageError.
func (g *Generator) Generate(ctx context.Context, ws Workspace) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if ws.SourceDir == "" || ws.OutputDir == "" {
		return nil, fmt.Errorf("%w: source and output directories are required", ErrInvalidWorkspace)
	}
	start := time.Now()

	tree, err := site.Scan(ctx, ws.SourceDir, g.cfg.extensions)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("source scanned", logging.Path(ws.SourceDir),
		zap.Int("pages", len(tree.Pages)), zap.Int("assets", len(tree.Assets)))

	states := make([]pageState, len(tree.Pages))
	rewriter := pipeline.NewLinkRewriter(tree.Links(), g.cfg.strict)
	err = runIndexed(ctx, g.cfg.workers, len(tree.Pages), func(ctx context.Context, i int) error {
		p := tree.Pages[i]
		st, err := g.convertPage(ctx, ws.SourceDir, tree, rewriter, p)
		if err != nil {
			return &PageError{Path: p.SourceRel, Err: err}
		}
		states[i] = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range states {
		if p := states[i].page; p.IsDescriptor() {
			p.Section.Reorder(states[i].meta.Children)
		}
	}

	if err := os.MkdirAll(ws.OutputDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	err = runIndexed(ctx, g.cfg.workers, len(states), func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.renderPage(ws.OutputDir, tree, states, i); err != nil {
			return &PageError{Path: states[i].page.SourceRel, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runIndexed(ctx, g.cfg.workers, len(tree.Assets), func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := tree.Assets[i]
		if err := fileutil.CopyFile(sourcePath(ws.SourceDir, rel), sourcePath(ws.OutputDir, rel)); err != nil {
			return &PageError{Path: rel, Err: fmt.Errorf("%w: %w", ErrWriteOutput, err)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	static, err := g.copyStatic(ctx, ws, tree)
	if err != nil {
		return nil, err
	}

	result = &Result{
		Pages:  make([]Page, len(states)),
		Assets: append([]string(nil), tree.Assets...),
		Static: static,
	}
	for i, st := range states {
		result.Pages[i] = st.publicPage()
	}

	g.logger.Info("site generated",
		zap.Int("pages", len(result.Pages)),
		zap.Int("assets", len(result.Assets)),
		zap.Int("static", len(result.Static)),
		logging.Duration(time.Since(start)))
	return result, nil
}

// convertPage runs the Markdown pipeline on one page.
func (g *Generator) convertPage(ctx context.Context, root string, tree *site.Tree, rewriter *pipeline.HTMLLinkRewriter, p *site.Page) (pageState, error) {
	data, err := os.ReadFile(sourcePath(root, p.SourceRel)) // #nosec G304 -- path comes from the tree scan
	if err != nil {
		return pageState{}, err
	}

	meta, body, err := g.frontMatter.ParseFrontMatter(data)
	if err != nil {
		return pageState{}, err
	}

	md, err := g.preprocessor.PreprocessMarkdown(ctx, string(body))
	if err != nil {
		return pageState{}, err
	}

	fragment, err := g.converter.ToHTML(ctx, md)
	if err != nil {
		return pageState{}, err
	}
	fragment = pipeline.ConvertMarkPlaceholders(fragment)
	fragment = g.sanitizer.Sanitize(fragment)

	links, err := rewriter.RewriteLinks(ctx, fragment, pipeline.PageRef{SourceRel: p.SourceRel, OutputRel: p.OutputRel})
	if err != nil {
		return pageState{}, err
	}
	for _, ref := range links.Unresolved {
		g.logger.Warn("unresolved link removed", logging.Path(p.SourceRel), logging.Target(ref))
	}

	st := pageState{page: p, meta: meta, body: links.HTML, lost: links.Unresolved}

	summary := pipeline.Summarize(links.HTML)
	st.title = g.pageTitle(p, meta, summary)
	st.desc = meta.Description
	if st.desc == "" {
		st.desc = summary.Paragraph
	}

	if st.header, err = g.resolveHeader(tree, p, meta.Header); err != nil {
		return pageState{}, err
	}
	if meta.Header != "" && st.header == "" {
		st.lost = append(st.lost, meta.Header)
	}
	return st, nil
}

// pageTitle applies the fallbacks: front matter, first heading, then the
// name of the file or, for a descriptor, of its section.
func (g *Generator) pageTitle(p *site.Page, meta pipeline.Meta, summary pipeline.Summary) string {
	switch {
	case meta.Title != "":
		return meta.Title
	case summary.Heading != "":
		return summary.Heading
	case p.IsDescriptor() && p.Section.Dir == "":
		if g.cfg.siteName != "" {
			return g.cfg.siteName
		}
		return DefaultHomeTitle
	case p.IsDescriptor():
		return pipeline.HumanizeName(p.Section.Name)
	default:
		return pipeline.HumanizeName(p.Name)
	}
}

// resolveHeader turns the front matter header reference into an output path.
// [[name]] is accepted as well as a plain reference.
func (g *Generator) resolveHeader(tree *site.Tree, p *site.Page, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(strings.TrimPrefix(ref, "[["), "]]")
	if ref == "" {
		return "", nil
	}
	if fileutil.IsExternalRef(ref) {
		return ref, nil
	}

	target, ok, err := tree.Links().Resolve(p.SourceRel, ref)
	if err != nil {
		return "", fmt.Errorf("header: %w", err)
	}
	if !ok {
		if g.cfg.strict {
			return "", fmt.Errorf("header: %w: %s", ErrUnknownLocalLink, ref)
		}
		g.logger.Warn("unresolved header image dropped", logging.Path(p.SourceRel), logging.Target(ref))
		return "", nil
	}
	return target, nil
}

// renderPage fills the template for states[i] and writes the page.
func (g *Generator) renderPage(outDir string, tree *site.Tree, states []pageState, i int) error {
	st := states[i]
	p := st.page

	values := render.Values{
		Title:       st.title,
		Description: st.desc,
		SiteName:    g.cfg.siteName,
		SiteURL:     g.cfg.siteURL,
		Root:        rootPrefix(p.Depth()),
		Body:        st.body,
	}

	var err error
	if g.template.Uses(render.MarkerNav) {
		if values.Nav, err = g.partials.Nav(buildNav(tree, states, p)); err != nil {
			return err
		}
	}
	if g.template.Uses(render.MarkerHeader) && st.header != "" {
		alt := st.meta.HeaderCaption
		if alt == "" {
			alt = st.title
		}
		h := render.Header{Src: urlFrom(p, st.header), Alt: alt, Caption: st.meta.HeaderCaption}
		if values.Header, err = g.partials.Header(h); err != nil {
			return err
		}
	}
	if g.template.Uses(render.MarkerChildren) {
		if values.Children, err = g.partials.Listing(buildListing(tree, states, p)); err != nil {
			return err
		}
	}

	dst := sourcePath(outDir, p.OutputRel)
	if err := os.MkdirAll(filepath.Dir(dst), dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := os.WriteFile(dst, g.template.Render(values), filePermissions); err != nil { // #nosec G306 -- pages are public
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// buildNav converts the site navigation for p into partial data.
func buildNav(tree *site.Tree, states []pageState, p *site.Page) render.Nav {
	levels := tree.Navigation(p)
	nav := render.Nav{Levels: make([]render.NavLevel, len(levels))}
	for li, level := range levels {
		items := make([]render.NavItem, len(level.Entries))
		for ei, e := range level.Entries {
			item := render.NavItem{Title: pipeline.HumanizeName(e.Name), Active: ei == level.Active}
			if e.Page != nil {
				item.Title = states[e.Page.Index].title
				item.URL = urlFrom(p, e.Page.OutputRel)
			}
			items[ei] = item
		}
		nav.Levels[li] = render.NavLevel{Items: items}
	}
	return nav
}

// buildListing lists the children of a descriptor page.
func buildListing(tree *site.Tree, states []pageState, p *site.Page) []render.ListItem {
	children := tree.Children(p)
	items := make([]render.ListItem, len(children))
	for i, e := range children {
		child := states[e.Page.Index]
		items[i] = render.ListItem{
			Title:       child.title,
			Description: child.desc,
			URL:         urlFrom(p, e.Page.OutputRel),
		}
		if child.header != "" {
			items[i].Header = urlFrom(p, child.header)
		}
	}
	return items
}

// copyStatic copies ws.StaticDir into the output root. A static file that
// would overwrite a generated page or asset is an error.
func (g *Generator) copyStatic(ctx context.Context, ws Workspace, tree *site.Tree) ([]string, error) {
	if ws.StaticDir == "" {
		return nil, nil
	}
	if !fileutil.DirExists(ws.StaticDir) {
		return nil, fmt.Errorf("%w: %s", ErrStaticNotFound, ws.StaticDir)
	}

	taken := make(map[string]string, len(tree.Pages)+len(tree.Assets))
	for _, p := range tree.Pages {
		taken[p.OutputRel] = p.SourceRel
	}
	for _, rel := range tree.Assets {
		taken[rel] = rel
	}

	var copied []string
	err := fileutil.WalkVisible(ctx, ws.StaticDir, func(rel string, d fs.DirEntry) error {
		if !d.Type().IsRegular() {
			return nil
		}
		if src, ok := taken[rel]; ok {
			return fmt.Errorf("%w: %s (generated from %s)", ErrStaticCollision, rel, src)
		}
		if err := fileutil.CopyFile(sourcePath(ws.StaticDir, rel), sourcePath(ws.OutputDir, rel)); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		copied = append(copied, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(copied) > 0 {
		g.logger.Debug("static files copied", logging.Count(len(copied)))
	}
	return copied, nil
}

func (st pageState) publicPage() Page {
	return Page{
		Name:            st.page.Name,
		SourcePath:      st.page.SourceRel,
		OutputPath:      st.page.OutputRel,
		Title:           st.title,
		Description:     st.desc,
		Header:          st.header,
		HeaderCaption:   st.meta.HeaderCaption,
		Children:        st.meta.Children,
		Body:            st.body,
		UnresolvedLinks: st.lost,
	}
}

// urlFrom returns the URL of target (an output path or external URL) as seen
// from page p. Local paths are escaped the same way as links in page bodies.
func urlFrom(p *site.Page, target string) string {
	if fileutil.IsExternalRef(target) {
		return target
	}
	u := &url.URL{Path: fileutil.RelativeURL(p.OutputRel, target)}
	return u.String()
}

// rootPrefix returns the relative path from a page at depth to the output
// root: "./" at the top, "../" per directory below it.
func rootPrefix(depth int) string {
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

func sourcePath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
