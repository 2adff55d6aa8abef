package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-md2site/internal/yamlutil"
)

// ErrFrontMatter indicates the front matter block could not be decoded.
var ErrFrontMatter = errors.New("invalid front matter")

// Meta is the front matter a note may carry. Unknown keys are ignored so
// notes written for other tools still build.
type Meta struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	Header        string   `yaml:"header"`         // header image reference, resolved like a link
	HeaderCaption string   `yaml:"header-caption"` // text under the header image
	Children      []string `yaml:"children"`       // listing/navigation order override
}

// FrontMatterParser splits front matter from the Markdown body.
type FrontMatterParser interface {
	ParseFrontMatter(content []byte) (Meta, []byte, error)
}

// YAMLFrontMatter parses "---" delimited YAML front matter.
type YAMLFrontMatter struct{}

var yamlFormat = frontmatter.NewFormat("---", "---", unmarshalFrontMatter)

// ParseFrontMatter returns the decoded metadata and the remaining body.
// Content without front matter is returned unchanged with zero Meta.
func (YAMLFrontMatter) ParseFrontMatter(content []byte) (Meta, []byte, error) {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(content), &meta, yamlFormat)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	return meta, body, nil
}

// unmarshalFrontMatter decodes through yamlutil; an empty block is valid.
func unmarshalFrontMatter(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return yamlutil.Unmarshal(data, v)
}
