package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxDescriptionRunes bounds descriptions derived from the first paragraph.
const MaxDescriptionRunes = 160

// Summary is the text metadata derived from a rendered fragment.
type Summary struct {
	Heading   string // text of the first <h1>, may be empty
	Paragraph string // whitespace-collapsed text of the first <p>, truncated
}

// Summarize extracts the first level-1 heading and the first paragraph.
func Summarize(fragment string) Summary {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Summary{}
	}

	var s Summary
	s.Heading = collapseSpace(doc.Find("h1").First().Text())

	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := collapseSpace(p.Text())
		if text == "" {
			return true // image-only or empty paragraph
		}
		s.Paragraph = truncateRunes(text, MaxDescriptionRunes)
		return false
	})
	return s
}

// HumanizeName turns a file stem into a title: "my-note" -> "My Note".
func HumanizeName(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	return cases.Title(language.Und, cases.NoLower).String(strings.Join(words, " "))
}

// collapseSpace trims and folds runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes shortens s to at most n runes, ending with an ellipsis when cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
