package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/alnah/go-mdreport"
)

const (
	defaultWidth = 80
	minWidth     = 20
	bulletPrefix = "   • "
	bulletIndent = 5 // display width of bulletPrefix
)

// terminalWidth returns the width of w when it is a terminal, then
// $COLUMNS, then fallback.
func terminalWidth(w io.Writer, getenv func(string) string, fallback int) int {
	if f, ok := w.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			if width, _, err := term.GetSize(fd); err == nil && width > 0 {
				return width
			}
		}
	}
	if value := getenv("COLUMNS"); value != "" {
		if width, err := strconv.Atoi(value); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}

// printContents lists the report's main sections as bullets, wrapped to
// width with a hanging indent.
func printContents(w io.Writer, outline []mdreport.Heading, width int) {
	sections := mdreport.Sections(outline)
	if len(sections) == 0 {
		return
	}

	width = max(width, minWidth)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "📋 Document Contents:")
	for _, s := range sections {
		fmt.Fprintln(w, bullet(s.Text, width))
	}
}

// bullet formats one entry: the first line behind the bullet, the
// following lines aligned with the text.
func bullet(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return strings.TrimRight(bulletPrefix, " ")
	}
	wrapped := wordwrap.String(text, width-bulletIndent)
	indented := indent.String(wrapped, bulletIndent)
	return bulletPrefix + strings.TrimPrefix(indented, strings.Repeat(" ", bulletIndent))
}
