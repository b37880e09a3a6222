package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// *[ABBR]: Expansion
	abbrDefPattern = regexp.MustCompile(`^ {0,3}\*\[([^\]]+)\]:[ \t]*(.*?)[ \t]*$`)

	// Opening tag of a block carrying markdown="1" (or "block"), alone on
	// its line apart from optional trailing content.
	mdBlockOpenPattern = regexp.MustCompile(
		`^(\s*)<([a-zA-Z][a-zA-Z0-9]*)([^>]*?)\s+markdown\s*=\s*(?:"(?:1|block)"|'(?:1|block)'|1)([^>]*)>(.*)$`)

	fencePattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// Prepared is Markdown ready for goldmark plus the side tables pulled out
// of it.
type Prepared struct {
	Markdown      string
	Abbreviations map[string]string
}

// Preprocessor rewrites Markdown source before goldmark sees it.
type Preprocessor interface {
	Preprocess(ctx context.Context, content string) (*Prepared, error)
}

// SourcePreprocessor normalizes line endings, extracts abbreviation
// definitions, and opens up markdown="1" HTML blocks so their content is
// parsed as Markdown.
type SourcePreprocessor struct{}

// Preprocess applies every source transformation. Fenced code is left
// untouched.
func (p *SourcePreprocessor) Preprocess(ctx context.Context, content string) (*Prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content = normalizeLineEndings(content)
	lines := strings.Split(content, "\n")

	lines, abbrs := extractAbbreviations(lines)
	lines = openMarkdownBlocks(lines)

	return &Prepared{
		Markdown:      strings.Join(lines, "\n"),
		Abbreviations: abbrs,
	}, nil
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// fenceTracker reports whether a line sits inside a fenced code block.
type fenceTracker struct {
	open string // the opening fence run, "" when outside
}

// step consumes one line and reports whether it belongs to a fence
// (including the fence delimiters themselves).
func (f *fenceTracker) step(line string) bool {
	m := fencePattern.FindStringSubmatch(line)
	if f.open == "" {
		if m != nil {
			f.open = m[1]
			return true
		}
		return false
	}
	if m != nil && m[1][0] == f.open[0] && len(m[1]) >= len(f.open) &&
		strings.TrimSpace(line[strings.Index(line, m[1])+len(m[1]):]) == "" {
		f.open = ""
	}
	return true
}

// extractAbbreviations removes "*[ABBR]: Expansion" lines and returns them
// as a map. A later definition of the same abbreviation wins.
func extractAbbreviations(lines []string) ([]string, map[string]string) {
	var (
		out    = lines[:0:0]
		abbrs  map[string]string
		fences fenceTracker
	)
	for _, line := range lines {
		if fences.step(line) {
			out = append(out, line)
			continue
		}
		m := abbrDefPattern.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		key := strings.TrimSpace(m[1])
		if key == "" {
			out = append(out, line)
			continue
		}
		if abbrs == nil {
			abbrs = make(map[string]string)
		}
		abbrs[key] = m[2]
	}
	return out, abbrs
}

// openMarkdownBlocks handles <tag markdown="1"> ... </tag>: the attribute
// is dropped, the inner lines are dedented, and blank lines are placed after
// the opening tag and before the closing tag so CommonMark parses the inner
// content as Markdown instead of raw HTML.
func openMarkdownBlocks(lines []string) []string {
	out := make([]string, 0, len(lines)+8)
	var fences fenceTracker

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fences.step(line) {
			out = append(out, line)
			continue
		}
		m := mdBlockOpenPattern.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		indent, tag, before, after, rest := m[1], m[2], m[3], m[4], m[5]
		end := findClosingTag(lines, i, tag, rest)
		if end < 0 {
			out = append(out, line)
			continue
		}

		out = append(out, indent+"<"+tag+before+after+">", "")

		var inner []string
		closeLine := lines[end]
		if end == i {
			// <div markdown="1">content</div> on a single line
			idx := strings.LastIndex(strings.ToLower(rest), "</"+strings.ToLower(tag))
			inner = []string{rest[:idx]}
			closeLine = rest[idx:]
		} else {
			if strings.TrimSpace(rest) != "" {
				inner = append(inner, rest)
			}
			inner = append(inner, lines[i+1:end]...)
			lowerClose := strings.ToLower(closeLine)
			idx := strings.LastIndex(lowerClose, "</"+strings.ToLower(tag))
			if head := closeLine[:idx]; strings.TrimSpace(head) != "" {
				inner = append(inner, head)
			}
			closeLine = strings.TrimLeft(closeLine[idx:], " \t")
		}

		out = append(out, openMarkdownBlocks(dedent(inner))...)
		out = append(out, "", indent+closeLine)
		i = end
	}
	return out
}

// findClosingTag returns the index of the line holding the </tag> that
// closes the block opened on line start, tracking nested tags of the same
// name. Returns -1 when the block is never closed.
func findClosingTag(lines []string, start int, tag, rest string) int {
	open := regexp.MustCompile(`(?i)<` + regexp.QuoteMeta(tag) + `\b`)
	closing := regexp.MustCompile(`(?i)</` + regexp.QuoteMeta(tag) + `\s*>`)

	depth := 1
	check := func(s string) bool {
		depth += len(open.FindAllStringIndex(s, -1))
		depth -= len(closing.FindAllStringIndex(s, -1))
		return depth <= 0
	}

	if check(rest) {
		return start
	}
	for j := start + 1; j < len(lines); j++ {
		if check(lines[j]) {
			return j
		}
	}
	return -1
}

// dedent strips the longest common leading whitespace of non-blank lines.
func dedent(lines []string) []string {
	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lead := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = lead, false
			continue
		}
		for !strings.HasPrefix(lead, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, prefix)
	}
	return out
}
