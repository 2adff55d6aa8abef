// Package site scans a notes directory into pages, assets and sections, and
// answers the structural questions page generation needs: where a link
// points, what a page's navigation looks like, which pages a section lists.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/alnah/go-md2site/internal/fileutil"
)

// ErrOutputCollision indicates two source files that map to the same output path.
var ErrOutputCollision = errors.New("output path collision")

// IndexName is the stem of a section descriptor page: dir/index.md.
// A page named after its directory (dir/dir.md) also describes the section.
const IndexName = "index"

// Page is a content file and the HTML file it becomes.
type Page struct {
	Index     int    // position in Tree.Pages
	Name      string // file stem, e.g. "my-note"
	SourceRel string // e.g. "notes/my-note.md"
	OutputRel string // e.g. "notes/my-note.html"
	Section   *Section
}

// IsDescriptor reports whether the page describes its directory.
func (p *Page) IsDescriptor() bool {
	return p.Section != nil && p.Section.Descriptor == p
}

// Depth is the number of directories between the output root and the page.
func (p *Page) Depth() int {
	return strings.Count(p.OutputRel, "/")
}

// Section is a directory holding at least one page, directly or below.
type Section struct {
	Dir        string // slash path relative to the root, "" for the root
	Name       string // directory base name, "" for the root
	Parent     *Section
	Descriptor *Page   // nil when the directory has no descriptor page
	Entries    []Entry // pages and subsections, descriptor excluded

	pages    []*Page
	children []*Section
}

// Entry is one item of a section: a page, or a subsection represented by
// its descriptor page when it has one.
type Entry struct {
	Name    string
	Page    *Page    // nil for a subsection without a descriptor
	Section *Section // set for subsections
}

// Tree is the scanned source directory.
type Tree struct {
	Root   *Section
	Pages  []*Page  // lexical order of source paths
	Assets []string // slash paths of pass-through files, lexical order

	links *LinkTable
}

// Links returns the table used to resolve references between files.
func (t *Tree) Links() *LinkTable { return t.links }

// Scan walks root and classifies every visible regular file: files whose
// extension is in extensions become pages, everything else is an asset.
// Extensions are matched case-insensitively.
func Scan(ctx context.Context, root string, extensions []string) (*Tree, error) {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		norm, err := fileutil.NormalizeExtension(ext)
		if err != nil {
			return nil, fmt.Errorf("content extension %q: %w", ext, err)
		}
		exts[norm] = true
	}

	t := &Tree{Root: &Section{}}
	sections := map[string]*Section{"": t.Root}
	outputs := make(map[string]string)

	err := fileutil.WalkVisible(ctx, root, func(rel string, d fs.DirEntry) error {
		parent := sections[dirOf(rel)]
		if d.IsDir() {
			s := &Section{Dir: rel, Name: path.Base(rel), Parent: parent}
			sections[rel] = s
			parent.children = append(parent.children, s)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := path.Ext(rel)
		isPage := exts[strings.ToLower(ext)]
		out := rel
		if isPage {
			out = strings.TrimSuffix(rel, ext) + ".html"
		}
		if prev, dup := outputs[out]; dup {
			return fmt.Errorf("%w: %s and %s both produce %s", ErrOutputCollision, prev, rel, out)
		}
		outputs[out] = rel

		if !isPage {
			t.Assets = append(t.Assets, rel)
			return nil
		}
		p := &Page{
			Index:     len(t.Pages),
			Name:      strings.TrimSuffix(path.Base(rel), ext),
			SourceRel: rel,
			OutputRel: out,
			Section:   parent,
		}
		t.Pages = append(t.Pages, p)
		parent.pages = append(parent.pages, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.Root.build()
	t.links = newLinkTable(t)
	return t, nil
}

// build picks descriptors and fills Entries bottom-up. It reports whether
// the section holds any page.
func (s *Section) build() bool {
	s.Descriptor = s.findDescriptor()

	var entries []Entry
	for _, p := range s.pages {
		if p != s.Descriptor {
			entries = append(entries, Entry{Name: p.Name, Page: p})
		}
	}
	for _, c := range s.children {
		if !c.build() {
			continue
		}
		entries = append(entries, Entry{Name: c.Name, Page: c.Descriptor, Section: c})
	}

	// Pages sort before a same-named subsection.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Section == nil && entries[j].Section != nil
	})
	s.Entries = entries
	return len(s.pages) > 0 || len(entries) > 0
}

func (s *Section) findDescriptor() *Page {
	for _, p := range s.pages {
		if p.Name == IndexName {
			return p
		}
	}
	if s.Name == "" {
		return nil
	}
	for _, p := range s.pages {
		if p.Name == s.Name {
			return p
		}
	}
	return nil
}

// Reorder moves the named entries to the front in the given order. Entries
// not named keep their relative order after them; unknown names are ignored.
func (s *Section) Reorder(names []string) {
	if len(names) == 0 {
		return
	}
	ordered := make([]Entry, 0, len(s.Entries))
	used := make([]bool, len(s.Entries))
	for _, name := range names {
		for i, e := range s.Entries {
			if !used[i] && e.Name == name {
				ordered = append(ordered, e)
				used[i] = true
				break
			}
		}
	}
	for i, e := range s.Entries {
		if !used[i] {
			ordered = append(ordered, e)
		}
	}
	s.Entries = ordered
}

func dirOf(rel string) string {
	if d := path.Dir(rel); d != "." {
		return d
	}
	return ""
}
