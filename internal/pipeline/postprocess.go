package pipeline

import (
	"context"
	"fmt"
)

// PostOptions carries what the HTML pass needs from earlier stages.
type PostOptions struct {
	SourceDir     string            // base for relative links and images ("" = leave them)
	Abbreviations map[string]string // from Prepared
}

// Fragment is the finished body HTML plus its outline.
type Fragment struct {
	HTML    string
	Outline []Heading
}

// Postprocess runs the DOM passes over goldmark's output in order:
// attribute lists, abbreviations, path rewriting, outline collection and
// [TOC] replacement. The fragment is parsed and serialized once.
func Postprocess(ctx context.Context, fragment string, opts PostOptions) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, isFragment, err := parseHTML(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrHTMLConversion, err)
	}

	applyAttrLists(doc)
	wrapAbbreviations(doc, opts.Abbreviations)

	if opts.SourceDir != "" {
		rw, err := newPathRewriter(opts.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving %s: %v", ErrHTMLConversion, opts.SourceDir, err)
		}
		rw.rewrite(doc)
	}

	outline := collectHeadings(doc)
	replaceTOCMarkers(doc, outline)

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering HTML: %v", ErrHTMLConversion, err)
	}
	return &Fragment{HTML: out, Outline: outline}, nil
}
