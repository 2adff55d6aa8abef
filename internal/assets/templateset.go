package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// TemplateSet holds the page template and the partials rendered into it.
type TemplateSet struct {
	Name    string // Identifier (name or directory path)
	Page    string // Page template with {{ marker }} placeholders
	Nav     string // html/template source for the nav marker
	Listing string // html/template source for the children marker
	Header  string // html/template source for the header marker
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// Template set file names.
const (
	PageFile    = "page.html"
	NavFile     = "nav.html"
	ListingFile = "listing.html"
	HeaderFile  = "header.html"
)

// assembleTemplateSet reads every file of a set through read.
// A set with no file at all is not found; a set with some files is incomplete.
func assembleTemplateSet(name string, read func(file string) ([]byte, error)) (*TemplateSet, error) {
	files := []string{PageFile, NavFile, ListingFile, HeaderFile}
	contents := make([]string, len(files))
	var missing []string

	for i, file := range files {
		data, err := read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, file)
				continue
			}
			return nil, fmt.Errorf("%w: reading %s: %w", ErrAssetRead, file, err)
		}
		contents[i] = string(data)
	}

	if len(missing) == len(files) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, missing[0])
	}

	return &TemplateSet{
		Name:    name,
		Page:    contents[0],
		Nav:     contents[1],
		Listing: contents[2],
		Header:  contents[3],
	}, nil
}
