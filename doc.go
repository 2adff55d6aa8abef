// Package md2site turns a directory of Markdown notes into a static website.
//
// # Quick Start
//
//	gen, err := md2site.NewGenerator(
//	    md2site.WithSite("My Notes", "https://example.org"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := gen.Generate(ctx, md2site.Workspace{
//	    SourceDir: "notes",
//	    OutputDir: "output",
//	})
//
// Every content file (".md" and ".markdown" by default) becomes one HTML file
// at the same relative path with the extension swapped. Every other file is
// copied byte for byte. Hidden files and directories are skipped.
//
// # Page Pipeline
//
//  1. Front matter split (title, description, header, header-caption, children)
//  2. Markdown preprocessing ([[wiki links]], ![[embeds]], ==highlight==)
//  3. Markdown to HTML via Goldmark (GFM, footnotes, syntax highlighting)
//  4. Sanitization of raw HTML, when allowed
//  5. Link rewriting: local references become relative URLs
//  6. Template rendering with navigation, header image and children listing
//
// # Templates
//
// The page template is a plain HTML document with {{ marker }} placeholders.
// {{ title }} and {{ body }} are required; {{ description }}, {{ site_name }},
// {{ site_url }}, {{ nav }}, {{ header }}, {{ children }} and {{ root }} are
// optional. Any other marker is an error reported when the generator is created.
//
// # Sections
//
// A directory's descriptor page (dir/index.md or dir/<dir>.md) represents the
// directory in navigation and lists its children.
//
// Generation is deterministic: the same notes and template always produce
// byte-identical output.
package md2site
