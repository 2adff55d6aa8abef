package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// These are guaranteed to not conflict with any standard characters
// and will pass through Goldmark unchanged (no WithUnsafe needed).
// Post-processing converts these to <mark> tags after HTML generation.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// ErrUnsupportedEmbed indicates a ![[file]] embed whose type cannot be shown.
var ErrUnsupportedEmbed = errors.New("unsupported embed type")

// Embeddable extensions. Videos become <video> elements during link rewriting.
var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".svg": true, ".webp": true}
	videoTypes      = map[string]string{".mp4": "video/mp4", ".webm": "video/webm"}
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==. The marked text neither starts nor ends
	// with "=", so runs of "=" are never highlights.
	highlightPattern = regexp.MustCompile(`==([^=\n](?:[^\n]*?[^=\n])?)==`)

	// Setext level-1 heading underline.
	setextUnderline = regexp.MustCompile(`^\s{0,3}=+\s*$`)

	// Wiki embed ![[target]] or ![[target|alt]], and wiki link [[target]] or
	// [[target|label]]. Targets cannot contain brackets, pipes or newlines.
	wikiPattern = regexp.MustCompile(`(!?)\[\[([^\[\]|\n]+)(?:\|([^\[\]\n]*))?\]\]`)

	// Fence opener or closer: three or more backticks or tildes.
	fencePattern = regexp.MustCompile("^\\s{0,3}(`{3,}|~{3,})")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) (string, error)
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
// Code blocks and code spans are left untouched.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content = normalizeLineEndings(content)

	var firstErr error
	content = mapOutsideCode(content, func(text string) string {
		text = convertHighlights(text)
		converted, err := convertWikiLinks(text)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return converted
	})
	if firstErr != nil {
		return "", firstErr
	}

	return compressBlankLines(content), nil
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
// The placeholders are converted to <mark> tags after Goldmark processing
// via ConvertMarkPlaceholders. This avoids needing html.WithUnsafe().
// Setext heading underlines are left as they are.
func convertHighlights(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if setextUnderline.MatchString(line) {
			continue
		}
		lines[i] = highlightPattern.ReplaceAllString(line, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	}
	return strings.Join(lines, "\n")
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
// Called after Goldmark HTML conversion to finalize highlight markup.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// convertWikiLinks rewrites wiki syntax into standard Markdown:
//
//	[[note]]          -> [note](<note>)
//	[[note|label]]    -> [label](<note>)
//	![[pic.png]]      -> ![pic.png](<pic.png>)
//	![[pic.png|alt]]  -> ![alt](<pic.png>)
//
// Resolution of the target happens later, on the HTML, so wiki links and
// Markdown links share one code path.
func convertWikiLinks(content string) (string, error) {
	var firstErr error
	out := wikiPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := wikiPattern.FindStringSubmatch(match)
		embed, target, label := m[1] == "!", strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
		if label == "" {
			label = target
		}

		if embed {
			ext := strings.ToLower(path.Ext(strings.SplitN(target, "#", 2)[0]))
			if !imageExtensions[ext] && videoTypes[ext] == "" {
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: ![[%s]]", ErrUnsupportedEmbed, target)
				}
				return match
			}
			return "![" + escapeLinkText(label) + "](<" + target + ">)"
		}
		return "[" + escapeLinkText(label) + "](<" + target + ">)"
	})
	return out, firstErr
}

// escapeLinkText escapes characters that would end Markdown link text early.
func escapeLinkText(s string) string {
	return strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`).Replace(s)
}

// mapOutsideCode applies fn to every part of content that is neither inside a
// fenced code block nor inside an inline code span.
func mapOutsideCode(content string, fn func(string) string) string {
	var out strings.Builder
	out.Grow(len(content))

	var fence string
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			out.WriteString(mapOutsideCodeSpans(pending.String(), fn))
			pending.Reset()
		}
	}

	lines := strings.SplitAfter(content, "\n")
	for _, line := range lines {
		if m := fencePattern.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				flush()
				fence = m[1]
				out.WriteString(line)
				continue
			case m[1][0] == fence[0] && len(m[1]) >= len(fence) && strings.TrimSpace(line) == m[1]:
				fence = ""
				out.WriteString(line)
				continue
			}
		}
		if fence != "" {
			out.WriteString(line)
			continue
		}
		pending.WriteString(line)
	}
	flush()

	return out.String()
}

// mapOutsideCodeSpans applies fn to text outside `code` spans. A backtick run
// without a matching closing run of the same length is literal text.
func mapOutsideCodeSpans(text string, fn func(string) string) string {
	var out strings.Builder
	start := 0 // beginning of the current non-code segment
	i := 0
	for i < len(text) {
		if text[i] != '`' {
			i++
			continue
		}
		run := backtickRun(text, i)
		closeAt := findBacktickRun(text, i+run, run)
		if closeAt < 0 {
			i += run
			continue
		}
		out.WriteString(fn(text[start:i]))
		out.WriteString(text[i : closeAt+run])
		i = closeAt + run
		start = i
	}
	out.WriteString(fn(text[start:]))
	return out.String()
}

func backtickRun(s string, i int) int {
	n := 0
	for i+n < len(s) && s[i+n] == '`' {
		n++
	}
	return n
}

// findBacktickRun returns the index of the next run of exactly n backticks
// at or after from, or -1.
func findBacktickRun(s string, from, n int) int {
	for i := from; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		run := backtickRun(s, i)
		if run == n {
			return i
		}
		i += run
	}
	return -1
}
