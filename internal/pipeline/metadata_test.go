package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		input         string
		wantHeading   string
		wantParagraph string
	}{
		{
			name:          "heading and paragraph",
			input:         `<h1 id="hello">Hello</h1><p>World</p>`,
			wantHeading:   "Hello",
			wantParagraph: "World",
		},
		{
			name:        "first h1 wins",
			input:       `<h2>Sub</h2><h1>First</h1><h1>Second</h1>`,
			wantHeading: "First",
		},
		{
			name:          "image-only paragraph skipped",
			input:         "<p><img src=\"x.png\"/></p><p>  Real\n  text  </p>",
			wantParagraph: "Real text",
		},
		{
			name:          "inline markup flattened",
			input:         `<p>Some <strong>bold</strong> and <a href="b.html">link</a>.</p>`,
			wantParagraph: "Some bold and link.",
		},
		{
			name:  "empty fragment",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Summarize(tt.input)
			if got.Heading != tt.wantHeading {
				t.Errorf("Heading = %q, want %q", got.Heading, tt.wantHeading)
			}
			if got.Paragraph != tt.wantParagraph {
				t.Errorf("Paragraph = %q, want %q", got.Paragraph, tt.wantParagraph)
			}
		})
	}
}

func TestSummarize_Truncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("mot é ", 60)
	got := Summarize("<p>" + long + "</p>").Paragraph

	if n := utf8.RuneCountInString(got); n > MaxDescriptionRunes {
		t.Errorf("paragraph has %d runes, want at most %d", n, MaxDescriptionRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("paragraph = %q, want ellipsis suffix", got)
	}
}

func TestHumanizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "my-note", want: "My Note"},
		{in: "snake_case_name", want: "Snake Case Name"},
		{in: "already Titled", want: "Already Titled"},
		{in: "2024-review", want: "2024 Review"},
		{in: "keep-API-caps", want: "Keep API Caps"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := HumanizeName(tt.in); got != tt.want {
				t.Errorf("HumanizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
