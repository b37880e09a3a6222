// Package assets holds the report stylesheet and HTML templates, embedded
// at compile time.
//
// Layout:
//
//	styles/
//	└── report.css      # print stylesheet (A4, 2cm margins, typography)
//	templates/
//	├── report.html     # document shell (metadata, header block, footer block)
//	├── header.html     # Chrome running header (print template)
//	└── footer.html     # Chrome running footer with page numbers
//
// Asset names are validated so a name can never address a file outside
// its directory.
package assets
