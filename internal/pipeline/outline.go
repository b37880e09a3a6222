package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// Heading is one entry of the document outline.
type Heading struct {
	Level int    // 1-6
	ID    string // anchor id, may be empty
	Text  string // plain text, whitespace collapsed
}

// collectHeadings lists h1-h6 in document order, skipping headings inside
// an existing table of contents.
func collectHeadings(root *html.Node) []Heading {
	var out []Heading
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && isTOC(n) {
			return false
		}
		level := headingLevel(n)
		if level == 0 {
			return true
		}
		id, _ := getAttr(n, "id")
		out = append(out, Heading{
			Level: level,
			ID:    id,
			Text:  strings.Join(strings.Fields(textContent(n)), " "),
		})
		return false
	})
	return out
}

// Sections returns the headings that name the document's main sections:
// the second level when the document has a single top-level title,
// otherwise the shallowest level present.
func Sections(outline []Heading) []Heading {
	if len(outline) == 0 {
		return nil
	}
	minLevel := 7
	count := map[int]int{}
	for _, h := range outline {
		count[h.Level]++
		minLevel = min(minLevel, h.Level)
	}

	level := minLevel
	if count[minLevel] == 1 {
		for l := minLevel + 1; l <= 6; l++ {
			if count[l] > 0 {
				level = l
				break
			}
		}
	}

	var out []Heading
	for _, h := range outline {
		if h.Level == level {
			out = append(out, h)
		}
	}
	return out
}
