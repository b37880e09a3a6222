package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOCMarker is the paragraph text replaced by the table of contents.
const TOCMarker = "[TOC]"

func isTOC(n *html.Node) bool {
	if n.DataAtom != atom.Div {
		return false
	}
	class, _ := getAttr(n, "class")
	for _, c := range strings.Fields(class) {
		if c == "toc" {
			return true
		}
	}
	return false
}

// isTOCMarker reports whether n is a paragraph holding only the marker.
func isTOCMarker(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.P {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return false
		}
	}
	return strings.TrimSpace(textContent(n)) == TOCMarker
}

// replaceTOCMarkers swaps every [TOC] paragraph for a nested list of links
// to the given headings.
func replaceTOCMarkers(root *html.Node, headings []Heading) {
	var markers []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Pre || n.DataAtom == atom.Code) {
			return false
		}
		if isTOCMarker(n) {
			markers = append(markers, n)
			return false
		}
		return true
	})

	for _, m := range markers {
		m.Parent.InsertBefore(buildTOC(headings), m)
		m.Parent.RemoveChild(m)
	}
}

// tocEntry is a heading with its nested children.
type tocEntry struct {
	heading  Heading
	children []*tocEntry
}

// nestHeadings builds the TOC tree. Depth is normalized to the shallowest
// heading, and skipped levels (h2 then h4) nest one step, not two.
func nestHeadings(headings []Heading) []*tocEntry {
	var roots []*tocEntry
	type frame struct {
		level int
		entry *tocEntry
	}
	var stack []frame

	for _, h := range headings {
		e := &tocEntry{heading: h}
		for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, e)
		} else {
			parent := stack[len(stack)-1].entry
			parent.children = append(parent.children, e)
		}
		stack = append(stack, frame{level: h.Level, entry: e})
	}
	return roots
}

func buildTOC(headings []Heading) *html.Node {
	div := newElement(atom.Div, html.Attribute{Key: "class", Val: "toc"})
	if entries := nestHeadings(headings); len(entries) > 0 {
		div.AppendChild(buildTOCList(entries))
	}
	return div
}

func buildTOCList(entries []*tocEntry) *html.Node {
	ul := newElement(atom.Ul)
	for _, e := range entries {
		li := newElement(atom.Li)
		var label *html.Node
		if e.heading.ID != "" {
			label = newElement(atom.A, html.Attribute{Key: "href", Val: "#" + e.heading.ID})
		} else {
			label = newElement(atom.Span)
		}
		label.AppendChild(newText(e.heading.Text))
		li.AppendChild(label)
		if len(e.children) > 0 {
			li.AppendChild(buildTOCList(e.children))
		}
		ul.AppendChild(li)
	}
	return ul
}
