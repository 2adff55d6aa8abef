package render

import (
	"fmt"
	"html/template"
	"strings"
)

// NavItem is one entry of a navigation level.
type NavItem struct {
	Title  string
	URL    string // empty for a section without a descriptor page
	Active bool   // on the path from the root to the current page
}

// NavLevel lists the entries of one directory.
type NavLevel struct {
	Items []NavItem
}

// Nav is the navigation shown on a page: the root level first, then each
// directory down to the page's own, then its children when it describes a
// section.
type Nav struct {
	Levels []NavLevel
}

// ListItem is one child in a section listing.
type ListItem struct {
	Title       string
	Description string
	URL         string
	Header      string // header image URL, may be empty
}

// Header is a page's header image.
type Header struct {
	Src     string
	Alt     string
	Caption string
}

// Partials holds the parsed html/template partials.
// It is safe for concurrent use once created.
type Partials struct {
	nav     *template.Template
	listing *template.Template
	header  *template.Template
}

// NewPartials parses the three partial sources.
func NewPartials(nav, listing, header string) (*Partials, error) {
	p := &Partials{}
	for _, def := range []struct {
		name string
		src  string
		dst  **template.Template
	}{
		{"nav", nav, &p.nav},
		{"listing", listing, &p.listing},
		{"header", header, &p.header},
	} {
		tmpl, err := template.New(def.name).Option("missingkey=error").Parse(def.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPartialParse, def.name, err)
		}
		*def.dst = tmpl
	}
	return p, nil
}

// Nav renders the navigation. An empty navigation renders nothing.
func (p *Partials) Nav(nav Nav) (string, error) {
	if len(nav.Levels) == 0 {
		return "", nil
	}
	return execute(p.nav, nav)
}

// Listing renders a children listing. An empty listing renders nothing.
func (p *Partials) Listing(items []ListItem) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	return execute(p.listing, items)
}

// Header renders a header image. A header without source renders nothing.
func (p *Partials) Header(h Header) (string, error) {
	if h.Src == "" {
		return "", nil
	}
	return execute(p.header, h)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPartialExec, tmpl.Name(), err)
	}
	return sb.String(), nil
}
