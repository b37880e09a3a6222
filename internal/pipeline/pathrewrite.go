package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativePaths turns relative img[src] and a[href] references into
// absolute file:// URLs under sourceDir, so the renderer resolves them no
// matter where the HTML is loaded from. An empty sourceDir is a no-op.
//
// Left alone: URLs with a scheme or host (http, mailto, data, file, //cdn),
// pure fragments, absolute paths, references escaping sourceDir, and
// media/script elements.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	rw, err := newPathRewriter(sourceDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rw.rewrite(doc)
	return renderHTML(doc, isFragment)
}

type pathRewriter struct {
	baseDir string // absolute
}

func newPathRewriter(sourceDir string) (*pathRewriter, error) {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, err
	}
	return &pathRewriter{baseDir: abs}, nil
}

func (p *pathRewriter) rewrite(root *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img:
				p.rewriteAttr(n, "src")
			case atom.A:
				p.rewriteAttr(n, "href")
			}
		}
		return true
	})
}

func (p *pathRewriter) rewriteAttr(n *html.Node, key string) {
	for i, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		ref, ok := relativeRef(attr.Val)
		if !ok {
			continue
		}

		absPath := filepath.Join(p.baseDir, filepath.FromSlash(ref.Path))
		if !isPathUnderDir(absPath, p.baseDir) {
			continue
		}

		out := pathToFileURL(absPath)
		if ref.Fragment != "" {
			out += "#" + ref.EscapedFragment()
		}
		n.Attr[i].Val = out
	}
}

// relativeRef parses a reference and reports whether it is a relative
// filesystem path worth rewriting.
func relativeRef(ref string) (*url.URL, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return nil, false
	}
	if filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") || filepath.VolumeName(ref) != "" {
		return nil, false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" || u.Path == "" {
		return nil, false
	}
	return u, true
}

// isPathUnderDir reports whether absPath is dir or lies below it.
func isPathUnderDir(absPath, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(absPath))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// pathToFileURL converts an absolute path to a file:// URL. Windows drive
// paths get the leading slash file URLs require (file:///C:/...).
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
