// Package render fills the page template.
//
// The page template is a static document with {{ marker }} placeholders.
// Markers are replaced by plain substitution, never evaluated, so any HTML
// or script in the template stays exactly as written. Text values (title,
// description, site name) are HTML-escaped; body, nav, header and children
// are inserted as HTML.
//
// Navigation, children listings and header images are produced by small
// html/template partials, so their markup can be overridden per site.
package render
