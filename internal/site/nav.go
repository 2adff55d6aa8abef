package site

// NavLevel is one directory's entries as shown in a page's navigation.
// Active is the index of the entry on the path to the page, or -1.
type NavLevel struct {
	Entries []Entry
	Active  int
}

// Navigation returns the levels from the root down to the page's directory.
// A descriptor page sees its own section's entries as the last level, with
// nothing active there; any other page is active among its siblings.
func (t *Tree) Navigation(p *Page) []NavLevel {
	var chain []*Section
	for s := p.Section; s != nil; s = s.Parent {
		chain = append([]*Section{s}, chain...)
	}

	levels := make([]NavLevel, 0, len(chain))
	for i, s := range chain {
		if len(s.Entries) == 0 {
			continue
		}
		active := -1
		if i+1 < len(chain) {
			active = s.indexOf(func(e Entry) bool { return e.Section == chain[i+1] })
		} else if !p.IsDescriptor() {
			active = s.indexOf(func(e Entry) bool { return e.Page == p && e.Section == nil })
		}
		levels = append(levels, NavLevel{Entries: s.Entries, Active: active})
	}
	return levels
}

// Children returns the entries a descriptor page lists: its section's pages
// and the subsections that have a descriptor. Other pages list nothing.
func (t *Tree) Children(p *Page) []Entry {
	if !p.IsDescriptor() {
		return nil
	}
	var out []Entry
	for _, e := range p.Section.Entries {
		if e.Page != nil {
			out = append(out, e)
		}
	}
	return out
}

func (s *Section) indexOf(match func(Entry) bool) int {
	for i, e := range s.Entries {
		if match(e) {
			return i
		}
	}
	return -1
}
