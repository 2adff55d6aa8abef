package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// ErrUnknownLocalLink indicates a local reference that matches no file.
var ErrUnknownLocalLink = errors.New("unknown local link")

// OutgoingClass marks links that leave the site.
const OutgoingClass = "outgoing"

// LinkResolver maps a local reference to the output file it designates.
type LinkResolver interface {
	// Resolve returns the output path (slash-separated, relative to the output
	// root) of the file ref points to, as written in the page at sourceRel.
	// ok is false when nothing matches; err reports references that cannot be
	// resolved safely (e.g. an ambiguous name).
	Resolve(sourceRel, ref string) (target string, ok bool, err error)
}

// PageRef locates the page being rewritten.
type PageRef struct {
	SourceRel string // e.g. "notes/a.md"
	OutputRel string // e.g. "notes/a.html"
}

// LinkResult is a rewritten fragment plus the references that were dropped.
type LinkResult struct {
	HTML       string
	Unresolved []string
}

// LinkRewriter rewrites local references in an HTML fragment.
type LinkRewriter interface {
	RewriteLinks(ctx context.Context, fragment string, page PageRef) (LinkResult, error)
}

// HTMLLinkRewriter rewrites a[href], img[src] and media sources:
//   - local references resolve through the LinkResolver and become URLs
//     relative to the page's output location (#fragment and ?query kept)
//   - images pointing to a video file become <video controls>
//   - external links get class="outgoing"
//   - unresolved references fail the page in strict mode; otherwise links are
//     unwrapped to their text and media elements are removed
type HTMLLinkRewriter struct {
	resolver LinkResolver
	strict   bool
}

// NewLinkRewriter creates an HTMLLinkRewriter.
func NewLinkRewriter(resolver LinkResolver, strict bool) *HTMLLinkRewriter {
	return &HTMLLinkRewriter{resolver: resolver, strict: strict}
}

// RewriteLinks rewrites every reference in fragment.
func (r *HTMLLinkRewriter) RewriteLinks(ctx context.Context, fragment string, page PageRef) (LinkResult, error) {
	if err := ctx.Err(); err != nil {
		return LinkResult{}, err
	}

	doc, isFragment, err := parseHTML(fragment)
	if err != nil {
		return LinkResult{}, fmt.Errorf("parsing HTML: %w", err)
	}

	var res LinkResult
	if err := r.rewriteNode(doc, page, &res); err != nil {
		return LinkResult{}, err
	}

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return LinkResult{}, fmt.Errorf("rendering HTML: %w", err)
	}
	res.HTML = out
	return res, nil
}

// ResolveURL resolves ref as written in page and returns the URL to use from
// the page's output location. External references are returned unchanged.
func (r *HTMLLinkRewriter) ResolveURL(page PageRef, ref string) (string, bool, error) {
	if fileutil.IsExternalRef(ref) {
		return ref, true, nil
	}
	u, err := url.Parse(ref)
	if err != nil || u.Path == "" {
		return "", false, nil
	}

	target, ok, err := r.resolver.Resolve(page.SourceRel, u.Path)
	if err != nil || !ok {
		return "", ok, err
	}

	rel := &url.URL{
		Path:     fileutil.RelativeURL(page.OutputRel, target),
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}
	return rel.String(), true, nil
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM depth-first, children before parents, so an
// unwrapped link still has its nested image rewritten.
func (r *HTMLLinkRewriter) rewriteNode(n *html.Node, page PageRef, res *LinkResult) error {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling // c may be replaced or removed
		if err := r.rewriteNode(c, page, res); err != nil {
			return err
		}
		c = next
	}

	if n.Type != html.ElementNode {
		return nil
	}

	switch n.DataAtom {
	case atom.A:
		return r.rewriteAnchor(n, page, res)
	case atom.Img, atom.Video, atom.Audio, atom.Source:
		return r.rewriteMedia(n, page, res)
	}
	return nil
}

func (r *HTMLLinkRewriter) rewriteAnchor(n *html.Node, page PageRef, res *LinkResult) error {
	i, ref := attrIndex(n, "href")
	if i < 0 || ref == "" || strings.HasPrefix(ref, "#") {
		return nil
	}
	if fileutil.IsExternalRef(ref) {
		addClass(n, OutgoingClass)
		return nil
	}

	resolved, ok, err := r.ResolveURL(page, ref)
	if err != nil {
		return fmt.Errorf("link %q: %w", ref, err)
	}
	if ok {
		n.Attr[i].Val = resolved
		return nil
	}
	if err := r.unresolved(ref, res); err != nil {
		return err
	}
	unwrap(n)
	return nil
}

func (r *HTMLLinkRewriter) rewriteMedia(n *html.Node, page PageRef, res *LinkResult) error {
	i, ref := attrIndex(n, "src")
	if i < 0 || ref == "" || fileutil.IsExternalRef(ref) {
		return nil
	}

	resolved, ok, err := r.ResolveURL(page, ref)
	if err != nil {
		return fmt.Errorf("embed %q: %w", ref, err)
	}
	if !ok {
		if err := r.unresolved(ref, res); err != nil {
			return err
		}
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return nil
	}

	n.Attr[i].Val = resolved
	if n.DataAtom == atom.Img {
		if mime := videoTypes[strings.ToLower(path.Ext(stripQueryAndFragment(resolved)))]; mime != "" {
			replaceWithVideo(n, resolved, mime)
		}
	}
	return nil
}

func (r *HTMLLinkRewriter) unresolved(ref string, res *LinkResult) error {
	if r.strict {
		return fmt.Errorf("%w: %q", ErrUnknownLocalLink, ref)
	}
	res.Unresolved = append(res.Unresolved, ref)
	return nil
}

func stripQueryAndFragment(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// attrIndex returns the index and value of the named attribute, or -1.
func attrIndex(n *html.Node, key string) (int, string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return i, a.Val
		}
	}
	return -1, ""
}

func addClass(n *html.Node, class string) {
	if i, existing := attrIndex(n, "class"); i >= 0 {
		for _, c := range strings.Fields(existing) {
			if c == class {
				return
			}
		}
		n.Attr[i].Val = strings.TrimSpace(existing + " " + class)
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// replaceWithVideo swaps an <img> for <video controls><source></video>.
func replaceWithVideo(img *html.Node, src, mime string) {
	if img.Parent == nil {
		return
	}
	video := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Video,
		Data:     "video",
		Attr:     []html.Attribute{{Key: "controls"}},
	}
	video.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Source,
		Data:     "source",
		Attr:     []html.Attribute{{Key: "src", Val: src}, {Key: "type", Val: mime}},
	})
	img.Parent.InsertBefore(video, img)
	img.Parent.RemoveChild(img)
}
