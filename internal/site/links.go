package site

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// ErrAmbiguousLink indicates a bare name shared by several files.
var ErrAmbiguousLink = errors.New("ambiguous link")

// Compile-time interface check.
var _ pipeline.LinkResolver = (*LinkTable)(nil)

// LinkTable maps the ways a note can refer to a file onto output paths:
//   - source paths, with or without the content extension ("notes/a.md", "notes/a")
//   - directory paths, which designate the section's descriptor ("notes")
//   - bare names: page stems, file names and section names ("a", "a.md", "pic.png")
//
// It is read-only after construction and safe for concurrent use.
type LinkTable struct {
	paths map[string]string
	names map[string][]string
}

func newLinkTable(t *Tree) *LinkTable {
	lt := &LinkTable{
		paths: make(map[string]string),
		names: make(map[string][]string),
	}
	for _, p := range t.Pages {
		lt.paths[p.SourceRel] = p.OutputRel
		lt.paths[strings.TrimSuffix(p.SourceRel, path.Ext(p.SourceRel))] = p.OutputRel
		lt.addName(p.Name, p.OutputRel)
		lt.addName(path.Base(p.SourceRel), p.OutputRel)
	}
	for _, rel := range t.Assets {
		lt.paths[rel] = rel
		lt.addName(path.Base(rel), rel)
	}
	var walk func(s *Section)
	walk = func(s *Section) {
		if s.Descriptor != nil && s.Dir != "" {
			lt.paths[s.Dir] = s.Descriptor.OutputRel
			lt.addName(s.Name, s.Descriptor.OutputRel)
		}
		for _, e := range s.Entries {
			if e.Section != nil {
				walk(e.Section)
			}
		}
	}
	walk(t.Root)

	for name, targets := range lt.names {
		sort.Strings(targets)
		lt.names[name] = targets
	}
	return lt
}

func (lt *LinkTable) addName(name, target string) {
	for _, existing := range lt.names[name] {
		if existing == target {
			return
		}
	}
	lt.names[name] = append(lt.names[name], target)
}

// Resolve returns the output path ref designates when written in the page at
// sourceRel. Lookup order: root-relative path ("/notes/a"), path relative to
// the page, bare name, path relative to the root. A bare name matching
// several files is an error wrapping ErrAmbiguousLink.
func (lt *LinkTable) Resolve(sourceRel, ref string) (string, bool, error) {
	ref = strings.TrimSuffix(ref, "/")
	if ref == "" {
		return "", false, nil
	}
	if strings.HasPrefix(ref, "/") {
		target, ok := lt.paths[strings.TrimPrefix(path.Clean(ref), "/")]
		return target, ok, nil
	}

	if target, ok := lt.paths[path.Join(path.Dir(sourceRel), ref)]; ok {
		return target, true, nil
	}

	if !strings.Contains(ref, "/") {
		switch targets := lt.names[ref]; len(targets) {
		case 0:
		case 1:
			return targets[0], true, nil
		default:
			return "", false, fmt.Errorf("%w: %q matches %s", ErrAmbiguousLink, ref, strings.Join(targets, ", "))
		}
	}

	target, ok := lt.paths[path.Clean(ref)]
	return target, ok, nil
}
