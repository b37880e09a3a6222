package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// abbrMatcher builds one whole-word pattern for all abbreviations,
// longest first so "AWS EKS" wins over "AWS".
func abbrMatcher(abbrs map[string]string) *regexp.Regexp {
	if len(abbrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(abbrs))
	for k := range abbrs {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return regexp.MustCompile(`\b(?:` + strings.Join(keys, "|") + `)\b`)
}

// wrapAbbreviations wraps occurrences of each abbreviation in
// <abbr title="expansion">. Text inside code, pre, script, style and
// existing abbr elements is skipped.
func wrapAbbreviations(root *html.Node, abbrs map[string]string) {
	re := abbrMatcher(abbrs)
	if re == nil {
		return
	}

	var targets []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Code, atom.Pre, atom.Script, atom.Style, atom.Abbr:
				return false
			}
		}
		if n.Type == html.TextNode && re.MatchString(n.Data) {
			targets = append(targets, n)
		}
		return true
	})

	for _, n := range targets {
		splitAbbrText(n, re, abbrs)
	}
}

// splitAbbrText replaces text node n with text and <abbr> siblings.
func splitAbbrText(n *html.Node, re *regexp.Regexp, abbrs map[string]string) {
	parent := n.Parent
	if parent == nil {
		return
	}
	text := n.Data
	prev := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] > prev {
			parent.InsertBefore(newText(text[prev:loc[0]]), n)
		}
		word := text[loc[0]:loc[1]]
		abbr := newElement(atom.Abbr, html.Attribute{Key: "title", Val: abbrs[word]})
		abbr.AppendChild(newText(word))
		parent.InsertBefore(abbr, n)
		prev = loc[1]
	}
	if prev < len(text) {
		parent.InsertBefore(newText(text[prev:]), n)
	}
	parent.RemoveChild(n)
}
