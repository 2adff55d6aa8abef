// Package pipeline implements the per-page Markdown-to-HTML stages:
//   - Front matter splitting (title, description, header, children order)
//   - Markdown preprocessing (line normalization, ==highlight==, wiki links
//     and embeds)
//   - Markdown to HTML fragment conversion via Goldmark
//   - Sanitization of raw HTML with bluemonday when raw HTML is allowed
//   - Link rewriting: local references resolved to output-relative URLs,
//     video embeds, outgoing link marking
//   - Title and description extraction
//
// Every stage is a small interface so the generator can substitute fakes in
// tests. Site-wide concerns (the link table, navigation, the page template)
// live in the site and render packages; pipeline stages only ever see one page.
package pipeline
