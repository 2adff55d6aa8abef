// Package assets provides the page template and its HTML partials.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (default set)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the primary loader used by the generator. It tries the
// custom FilesystemLoader first, falling back to EmbeddedLoader if the set
// is not found. This enables overriding the whole look of the site while
// keeping the defaults available.
//
// # Directory Structure
//
//	{basePath}/
//	└── templates/
//	    └── {name}/
//	        ├── page.html       # Page template with {{ marker }} placeholders
//	        ├── nav.html        # html/template partial: navigation levels
//	        ├── listing.html    # html/template partial: children listing
//	        └── header.html     # html/template partial: header image
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
