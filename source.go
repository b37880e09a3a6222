package mdreport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/alnah/go-mdreport/internal/textenc"
)

// Source is a Markdown file read from disk and decoded to UTF-8.
type Source struct {
	Path     string // absolute
	Dir      string // base for relative images and links
	Markdown string
	Charset  string // as detected, e.g. "UTF-8", "UTF-16LE", "ISO-8859-1"
}

// ReadSource reads and decodes the Markdown file at path.
// A missing path or a directory is ErrInputNotFound; binary content is
// ErrNotText; a blank file is ErrEmptyMarkdown.
func ReadSource(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputNotFound, path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is the report source
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	if !isText(data) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotText, path, mimetype.Detect(data))
	}

	text, charset := textenc.Decode(data)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMarkdown, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	return &Source{
		Path:     abs,
		Dir:      filepath.Dir(abs),
		Markdown: text,
		Charset:  charset,
	}, nil
}

// isText reports whether mimetype classifies data as text/plain or one of
// its descendants (text/html, text/x-markdown, ...).
func isText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
