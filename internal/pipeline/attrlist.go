package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// Trailing "{: #id .class key=value}" (the colon is optional).
	attrListTail = regexp.MustCompile(`(^|\n|[ \t])\{:?([^{}\n]*)\}[ \t]*$`)
	attrToken    = regexp.MustCompile(`^(?:#([\w-]+)|\.([\w-]+)|([\w-]+)=(?:"([^"]*)"|'([^']*)'|([^\s"']+)))`)
)

// applyAttrLists moves trailing attribute lists onto their block element.
// Headings, list items and definition terms accept the list at the end of
// the line; paragraphs and definitions need it on a line of its own.
func applyAttrLists(root *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Pre, atom.Code, atom.Script, atom.Style:
			return false
		case atom.P, atom.Dd:
			applyTrailingAttrs(n, true)
		case atom.Li, atom.Dt, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			applyTrailingAttrs(n, false)
		}
		return true
	})
}

func applyTrailingAttrs(n *html.Node, ownLine bool) {
	last := n.LastChild
	for last != nil && last.Type == html.TextNode && strings.TrimSpace(last.Data) == "" {
		last = last.PrevSibling
	}
	if last == nil || last.Type != html.TextNode {
		return
	}

	loc := attrListTail.FindStringSubmatchIndex(last.Data)
	if loc == nil {
		return
	}
	sep := last.Data[loc[2]:loc[3]]
	if ownLine && sep != "\n" && !(sep == "" && last.PrevSibling == nil && loc[0] == 0) {
		return
	}
	attrs, ok := parseAttrList(last.Data[loc[4]:loc[5]])
	if !ok {
		return
	}

	remaining := strings.TrimRight(last.Data[:loc[0]], " \t\n")
	if remaining == "" && last.PrevSibling == nil {
		// The list is the whole block: nothing to attach it to.
		return
	}
	last.Data = remaining

	for _, a := range attrs {
		switch a.Key {
		case "class":
			addClass(n, a.Val)
		default:
			setAttr(n, a.Key, a.Val)
		}
	}
}

// parseAttrList parses "#id .class key=value" tokens. Any unrecognized
// token rejects the whole list, so ordinary braces in prose stay as text.
func parseAttrList(s string) ([]html.Attribute, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var attrs []html.Attribute
	for s != "" {
		m := attrToken.FindStringSubmatch(s)
		if m == nil {
			return nil, false
		}
		switch {
		case m[1] != "":
			attrs = append(attrs, html.Attribute{Key: "id", Val: m[1]})
		case m[2] != "":
			attrs = append(attrs, html.Attribute{Key: "class", Val: m[2]})
		default:
			key := strings.ToLower(m[3])
			if strings.HasPrefix(key, "on") {
				return nil, false
			}
			val := m[4] + m[5] + m[6]
			attrs = append(attrs, html.Attribute{Key: key, Val: val})
		}
		s = strings.TrimLeft(s[len(m[0]):], " \t")
	}
	return attrs, true
}
