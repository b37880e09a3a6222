package mdreport

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rgb is a colour from the report stylesheet.
type rgb [3]int

var (
	colorText      = rgb{0x33, 0x33, 0x33}
	colorTitle     = rgb{0x2c, 0x3e, 0x50}
	colorSection   = rgb{0x34, 0x49, 0x5e}
	colorMuted     = rgb{0x7f, 0x8c, 0x8d}
	colorFooter    = rgb{0x66, 0x66, 0x66}
	colorAccent    = rgb{0x34, 0x98, 0xdb}
	colorRule      = rgb{0xec, 0xf0, 0xf1}
	colorInline    = rgb{0xe7, 0x4c, 0x3c}
	colorCodeBg    = rgb{0xf8, 0xf9, 0xfa}
	colorCodeLine  = rgb{0xe9, 0xec, 0xef}
	colorCell      = rgb{0xdd, 0xdd, 0xdd}
	colorStripe    = rgb{0xf2, 0xf2, 0xf2}
	colorHighlight = rgb{0xff, 0xf3, 0xcd}
	colorWhite     = rgb{0xff, 0xff, 0xff}
)

// boxColors are the borders of the callout classes.
var boxColors = map[string]rgb{
	"error-box":   {0xe7, 0x4c, 0x3c},
	"success-box": {0x27, 0xae, 0x60},
	"warning-box": {0xf3, 0x9c, 0x12},
}

// headingStyles follow the h1-h6 rules of the stylesheet (size in pt).
var headingStyles = [7]struct {
	size  float64
	color rgb
}{
	{},
	{24, colorTitle},
	{18, colorSection},
	{14, colorTitle},
	{12, colorMuted},
	{11, colorMuted},
	{11, colorMuted},
}

const (
	ptToMM     = 25.4 / 72
	lineFactor = 1.5
	bodySize   = 11.0
	codeSize   = 9.0
	tableSize  = 10.0
	listIndent = 6.0
	boxPadding = 4.0
)

// textStyle is the inherited inline state.
type textStyle struct {
	bold, italic, mono, underline bool
	size                          float64
	color                         rgb
	center                        bool
}

// fpdfWriter walks the body and draws it. The first error (including
// context cancellation) stops the walk.
type fpdfWriter struct {
	ctx   context.Context
	pdf   *gofpdf.Fpdf
	text  func(string) string
	style textStyle
	left  float64 // current left margin
	right float64 // current right margin
	err   error
}

func newFPDFWriter(ctx context.Context, pdf *gofpdf.Fpdf, text func(string) string) *fpdfWriter {
	w := &fpdfWriter{
		ctx:   ctx,
		pdf:   pdf,
		text:  text,
		style: textStyle{size: bodySize, color: colorText},
		left:  fpdfMargin,
		right: fpdfMargin,
	}
	w.apply()
	return w
}

func (w *fpdfWriter) apply() {
	family := "Helvetica"
	if w.style.mono {
		family = "Courier"
	}
	var style string
	if w.style.bold {
		style += "B"
	}
	if w.style.italic {
		style += "I"
	}
	if w.style.underline {
		style += "U"
	}
	w.pdf.SetFont(family, style, w.style.size)
	w.pdf.SetTextColor(w.style.color[0], w.style.color[1], w.style.color[2])
}

// with runs fn under a modified style and restores the previous one.
func (w *fpdfWriter) with(change func(*textStyle), fn func()) {
	saved := w.style
	change(&w.style)
	w.apply()
	fn()
	w.style = saved
	w.apply()
}

func (w *fpdfWriter) lineHeight() float64 {
	return w.style.size * ptToMM * lineFactor
}

func (w *fpdfWriter) setMargins(left, right float64) {
	w.left, w.right = left, right
	w.pdf.SetLeftMargin(left)
	w.pdf.SetRightMargin(right)
}

func (w *fpdfWriter) atLineStart() bool {
	return w.pdf.GetX() <= w.left+0.01
}

// startBlock ends the current line and adds vertical space, except at
// the top of a page.
func (w *fpdfWriter) startBlock(space float64) {
	if !w.atLineStart() {
		w.pdf.Ln(w.lineHeight())
	}
	w.pdf.SetX(w.left)
	if space > 0 && w.pdf.GetY() > fpdfMargin+0.01 {
		w.pdf.Ln(space)
	}
}

func (w *fpdfWriter) endBlock() {
	if !w.atLineStart() {
		w.pdf.Ln(w.lineHeight())
	}
	w.pdf.SetX(w.left)
}

// ensureSpace breaks the page when less than h remains.
func (w *fpdfWriter) ensureSpace(h float64) {
	_, pageH := w.pdf.GetPageSize()
	if w.pdf.GetY()+h > pageH-fpdfMargin {
		w.pdf.AddPage()
	}
}

func (w *fpdfWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *fpdfWriter) node(n *html.Node) {
	if w.err != nil {
		return
	}
	if err := w.ctx.Err(); err != nil {
		w.err = err
		return
	}
	if err := w.pdf.Error(); err != nil {
		w.err = fmt.Errorf("%w: %v", ErrPDFGeneration, err)
		return
	}

	switch n.Type {
	case html.TextNode:
		w.inlineText(n.Data)
	case html.ElementNode:
		w.element(n)
	}
}

func (w *fpdfWriter) element(n *html.Node) {
	if hasClass(n, "page-break") && w.pdf.GetY() > fpdfMargin+0.01 {
		w.startBlock(0)
		w.pdf.AddPage()
	}

	switch n.DataAtom {
	case atom.Head, atom.Style, atom.Script, atom.Title, atom.Meta, atom.Link:
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.heading(n, int(n.Data[1]-'0'))
	case atom.P:
		w.paragraph(n)
	case atom.Ul:
		w.list(n, false)
	case atom.Ol:
		w.list(n, true)
	case atom.Pre:
		w.pre(n)
	case atom.Blockquote:
		w.blockquote(n)
	case atom.Table:
		w.table(n)
	case atom.Hr:
		w.rule(colorCell, 0.3)
	case atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main, atom.Nav:
		w.div(n)
	case atom.Dl:
		w.startBlock(1)
		w.children(n)
		w.endBlock()
	case atom.Dt:
		w.startBlock(1)
		w.with(func(s *textStyle) { s.bold = true }, func() { w.children(n) })
		w.endBlock()
	case atom.Dd, atom.Li:
		w.setMargins(w.left+listIndent, w.right)
		w.startBlock(0)
		w.children(n)
		w.endBlock()
		w.setMargins(w.left-listIndent, w.right)
	case atom.Br:
		w.pdf.Ln(w.lineHeight())
	case atom.Strong, atom.B:
		w.with(func(s *textStyle) { s.bold = true }, func() { w.children(n) })
	case atom.Em, atom.I, atom.Cite:
		w.with(func(s *textStyle) { s.italic = true }, func() { w.children(n) })
	case atom.Code, atom.Kbd, atom.Samp:
		w.with(func(s *textStyle) {
			s.mono = true
			s.size = math.Min(s.size, tableSize)
			s.color = colorInline
		}, func() { w.children(n) })
	case atom.Mark:
		w.highlighted(n)
	case atom.A:
		w.link(n)
	case atom.Sup:
		w.sup(n)
	case atom.Img:
		w.image(n)
	case atom.Input:
		if t, _ := attr(n, "type"); t == "checkbox" {
			if _, checked := attr(n, "checked"); checked {
				w.write("[x] ")
			} else {
				w.write("[ ] ")
			}
		}
	default:
		w.children(n)
	}
}

// inlineText writes collapsed text at the current position.
func (w *fpdfWriter) inlineText(s string) {
	s = collapseSpace(pdfSafe(s))
	if w.atLineStart() {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	w.write(s)
}

func (w *fpdfWriter) write(s string) {
	w.pdf.Write(w.lineHeight(), w.text(s))
}

func (w *fpdfWriter) heading(n *html.Node, level int) {
	hs := headingStyles[level]
	w.startBlock(hs.size * ptToMM * 0.8)
	w.ensureSpace(hs.size*ptToMM*lineFactor + 3*bodySize*ptToMM*lineFactor)

	align := "L"
	if hasClass(n, "center") {
		align = "C"
	}
	w.with(func(s *textStyle) {
		s.bold = true
		s.size = hs.size
		s.color = hs.color
	}, func() {
		w.pdf.MultiCell(0, w.lineHeight(), w.text(collapseSpace(pdfSafe(textOf(n)))), "", align, false)
	})

	switch level {
	case 1:
		if align == "L" {
			w.rule(colorAccent, 0.8)
		}
	case 2:
		if align == "L" {
			w.rule(colorRule, 0.5)
		}
	}
	w.pdf.Ln(1.5)
}

func (w *fpdfWriter) paragraph(n *html.Node) {
	if w.style.center || hasClass(n, "center") {
		w.centered(n)
		return
	}
	w.startBlock(2)
	if hasClass(n, "highlight") {
		w.highlighted(n)
	} else {
		w.children(n)
	}
	w.endBlock()
}

// centeredLine is one <br>-separated line of a centred block.
type centeredLine struct {
	text string
	bold bool
}

// centered draws inline content line by line with MultiCell, which is the
// only gofpdf call that aligns text.
func (w *fpdfWriter) centered(n *html.Node) {
	var lines []centeredLine
	var cur strings.Builder
	boldRunes, totalRunes := 0, 0

	flush := func() {
		text := collapseSpace(pdfSafe(cur.String()))
		text = strings.TrimSpace(text)
		if text != "" {
			lines = append(lines, centeredLine{text: text, bold: boldRunes == totalRunes})
		}
		cur.Reset()
		boldRunes, totalRunes = 0, 0
	}

	var collect func(*html.Node, bool)
	collect = func(c *html.Node, bold bool) {
		switch {
		case c.Type == html.TextNode:
			cur.WriteString(c.Data)
			count := len([]rune(strings.TrimSpace(c.Data)))
			totalRunes += count
			if bold {
				boldRunes += count
			}
		case c.Type == html.ElementNode && c.DataAtom == atom.Br:
			flush()
		case c.Type == html.ElementNode && (c.DataAtom == atom.P || c.DataAtom == atom.Div):
			flush()
			for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
				collect(cc, bold)
			}
			flush()
		case c.Type == html.ElementNode:
			b := bold || c.DataAtom == atom.Strong || c.DataAtom == atom.B
			for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
				collect(cc, b)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, false)
	}
	flush()

	w.startBlock(2)
	for _, line := range lines {
		w.with(func(s *textStyle) { s.bold = s.bold || line.bold }, func() {
			w.pdf.MultiCell(0, w.lineHeight(), w.text(line.text), "", "C", false)
		})
	}
	w.pdf.SetX(w.left)
}

func (w *fpdfWriter) list(n *html.Node, ordered bool) {
	w.startBlock(1)
	w.setMargins(w.left+listIndent, w.right)

	num := 1
	if s, ok := attr(n, "start"); ok {
		if v, err := strconv.Atoi(s); err == nil {
			num = v
		}
	}

	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		w.startBlock(0.5)
		marker := "•"
		if ordered {
			marker = strconv.Itoa(num) + "."
			num++
		}
		w.pdf.SetX(w.left - listIndent + 1)
		w.write(marker)
		w.pdf.SetX(w.left)
		w.listItem(li)
		w.endBlock()
		if w.err != nil {
			break
		}
	}

	w.setMargins(w.left-listIndent, w.right)
	w.endBlock()
}

// listItem renders the first paragraph of a loose item inline, next to
// its marker.
func (w *fpdfWriter) listItem(li *html.Node) {
	first := true
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if first && c.Type == html.ElementNode && c.DataAtom == atom.P {
			w.children(c)
			first = false
			continue
		}
		if c.Type == html.ElementNode {
			first = false
		}
		w.node(c)
	}
}

func (w *fpdfWriter) pre(n *html.Node) {
	code := strings.TrimRight(strings.ReplaceAll(textOf(n), "\t", "    "), "\n")
	w.startBlock(2)
	w.with(func(s *textStyle) {
		s.mono = true
		s.bold, s.italic, s.underline = false, false, false
		s.size = codeSize
		s.color = colorTitle
	}, func() {
		w.pdf.SetFillColor(colorCodeBg[0], colorCodeBg[1], colorCodeBg[2])
		w.pdf.SetDrawColor(colorCodeLine[0], colorCodeLine[1], colorCodeLine[2])
		w.pdf.SetLineWidth(0.2)
		w.pdf.SetCellMargin(3)
		w.pdf.MultiCell(0, codeSize*ptToMM*1.4, w.text(pdfSafe(code)), "1", "L", true)
		w.pdf.SetCellMargin(1)
	})
	w.pdf.SetX(w.left)
	w.pdf.Ln(2)
}

func (w *fpdfWriter) blockquote(n *html.Node) {
	w.startBlock(2)
	y0, page0 := w.pdf.GetY(), w.pdf.PageNo()
	barX := w.left + 1

	w.setMargins(w.left+listIndent, w.right)
	w.with(func(s *textStyle) {
		s.italic = true
		s.color = colorMuted
	}, func() { w.children(n) })
	w.endBlock()
	w.setMargins(w.left-listIndent, w.right)

	if w.pdf.PageNo() == page0 {
		w.pdf.SetDrawColor(colorAccent[0], colorAccent[1], colorAccent[2])
		w.pdf.SetLineWidth(1)
		w.pdf.Line(barX, y0, barX, w.pdf.GetY())
	}
}

func (w *fpdfWriter) div(n *html.Node) {
	switch {
	case hasClass(n, "center"):
		w.centered(n)
		return
	case hasClass(n, "footer"):
		w.startBlock(8)
		w.with(func(s *textStyle) {
			s.size = 9
			s.color = colorFooter
			s.center = true
		}, func() { w.children(n) })
		return
	}

	for class, color := range boxColors {
		if hasClass(n, class) {
			w.box(n, color)
			return
		}
	}
	w.children(n)
}

// box draws a callout: content indented inside a coloured border. The
// border is drawn only when the box fits on one page.
func (w *fpdfWriter) box(n *html.Node, color rgb) {
	w.startBlock(3)
	w.ensureSpace(4 * w.lineHeight())
	x0, y0, page0 := w.left, w.pdf.GetY(), w.pdf.PageNo()
	pageW, _ := w.pdf.GetPageSize()

	w.pdf.Ln(boxPadding / 2)
	w.setMargins(w.left+boxPadding, w.right+boxPadding)
	w.pdf.SetX(w.left)
	w.children(n)
	w.endBlock()
	w.setMargins(w.left-boxPadding, w.right-boxPadding)

	if w.pdf.PageNo() == page0 {
		w.pdf.SetDrawColor(color[0], color[1], color[2])
		w.pdf.SetLineWidth(0.6)
		w.pdf.Rect(x0, y0, pageW-x0-w.right, w.pdf.GetY()-y0, "D")
	}
	w.pdf.Ln(3)
}

// highlighted draws inline content on the .highlight background.
func (w *fpdfWriter) highlighted(n *html.Node) {
	w.pdf.SetFillColor(colorHighlight[0], colorHighlight[1], colorHighlight[2])
	text := collapseSpace(pdfSafe(textOf(n)))
	if w.atLineStart() {
		text = strings.TrimLeft(text, " ")
	}
	width := w.pdf.GetStringWidth(w.text(text))
	pageW, _ := w.pdf.GetPageSize()
	if w.pdf.GetX()+width <= pageW-w.right {
		w.pdf.CellFormat(width, w.lineHeight(), w.text(text), "", 0, "L", true, 0, "")
		return
	}
	w.write(text)
}

func (w *fpdfWriter) link(n *html.Node) {
	href, _ := attr(n, "href")
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") && !strings.HasPrefix(href, "mailto:") {
		w.children(n)
		return
	}
	text := collapseSpace(pdfSafe(textOf(n)))
	if w.atLineStart() {
		text = strings.TrimLeft(text, " ")
	}
	w.with(func(s *textStyle) {
		s.underline = true
		s.color = colorAccent
	}, func() {
		w.pdf.WriteLinkString(w.lineHeight(), w.text(text), href)
	})
}

func (w *fpdfWriter) sup(n *html.Node) {
	text := strings.TrimSpace(collapseSpace(pdfSafe(textOf(n))))
	if text == "" {
		return
	}
	w.pdf.SubWrite(w.lineHeight(), w.text(text), w.style.size*0.6, w.style.size*0.35, 0, "")
}

// image embeds local PNG, JPEG and GIF files scaled to the text width.
// Anything else is replaced by its alt text.
func (w *fpdfWriter) image(n *html.Node) {
	src, _ := attr(n, "src")
	alt, _ := attr(n, "alt")

	path, ok := localImagePath(src)
	if ok {
		opts := gofpdf.ImageOptions{ReadDpi: true}
		info := w.pdf.RegisterImageOptions(path, opts)
		if w.pdf.Ok() && info != nil {
			w.startBlock(1)
			pageW, _ := w.pdf.GetPageSize()
			width := math.Min(info.Width(), pageW-w.left-w.right)
			w.pdf.ImageOptions(path, w.left, -1, width, 0, true, opts, 0, "")
			w.pdf.SetX(w.left)
			return
		}
		w.pdf.ClearError()
	}

	if alt != "" {
		w.with(func(s *textStyle) {
			s.italic = true
			s.color = colorMuted
		}, func() {
			w.inlineText("[" + alt + "]")
		})
	}
}

// localImagePath resolves a file:// URL (as written by the path rewriter)
// to a path gofpdf can read.
func localImagePath(src string) (string, bool) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return "", false
	}
	path := filepath.FromSlash(u.Path)
	if len(path) > 2 && path[0] == '\\' && path[2] == ':' { // \C:\...
		path = path[1:]
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return path, true
	}
	return "", false
}

func (w *fpdfWriter) rule(color rgb, width float64) {
	w.endBlock()
	pageW, _ := w.pdf.GetPageSize()
	y := w.pdf.GetY() + 1
	w.pdf.SetDrawColor(color[0], color[1], color[2])
	w.pdf.SetLineWidth(width)
	w.pdf.Line(w.left, y, pageW-w.right, y)
	w.pdf.SetY(y + 2)
	w.pdf.SetX(w.left)
}

// tableCell is the text of one cell.
type tableCell struct {
	text   string
	header bool
}

func (w *fpdfWriter) table(n *html.Node) {
	var rows [][]tableCell
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		for r := c.FirstChild; r != nil; r = r.NextSibling {
			if r.Type != html.ElementNode {
				continue
			}
			switch r.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				collect(r)
			case atom.Tr:
				var row []tableCell
				for cell := r.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.DataAtom == atom.Th || cell.DataAtom == atom.Td) {
						row = append(row, tableCell{
							text:   strings.TrimSpace(collapseSpace(pdfSafe(textOf(cell)))),
							header: cell.DataAtom == atom.Th,
						})
					}
				}
				if len(row) > 0 {
					rows = append(rows, row)
				}
			}
		}
	}
	collect(n)
	if len(rows) == 0 {
		return
	}

	w.startBlock(3)
	w.with(func(s *textStyle) {
		s.size = tableSize
		s.bold, s.italic, s.mono, s.underline = false, false, false, false
	}, func() {
		widths := w.columnWidths(rows)
		lh := w.lineHeight() * 0.9
		body := 0
		for _, row := range rows {
			w.tableRow(row, widths, lh, body)
			if !row[0].header {
				body++
			}
		}
	})
	w.pdf.SetX(w.left)
	w.pdf.Ln(3)
}

// columnWidths sizes columns by their widest cell and stretches or
// shrinks them to the text width.
func (w *fpdfWriter) columnWidths(rows [][]tableCell) []float64 {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	pageW, _ := w.pdf.GetPageSize()
	avail := pageW - w.left - w.right

	natural := make([]float64, cols)
	total := 0.0
	for c := range cols {
		natural[c] = 8
		for _, row := range rows {
			if c < len(row) {
				natural[c] = math.Max(natural[c], w.pdf.GetStringWidth(w.text(row[c].text))+4)
			}
		}
		natural[c] = math.Min(natural[c], avail*0.6)
		total += natural[c]
	}

	widths := make([]float64, cols)
	for c := range cols {
		widths[c] = natural[c] * avail / total
	}
	return widths
}

func (w *fpdfWriter) tableRow(row []tableCell, widths []float64, lh float64, bodyIndex int) {
	lines := 1
	for c, cell := range row {
		if c >= len(widths) {
			break
		}
		lines = max(lines, len(w.pdf.SplitLines([]byte(w.text(cell.text)), widths[c]-3)))
	}
	h := float64(lines)*lh + 2
	w.ensureSpace(h)

	x, y := w.left, w.pdf.GetY()
	w.pdf.SetDrawColor(colorCell[0], colorCell[1], colorCell[2])
	w.pdf.SetLineWidth(0.2)

	for c, cell := range row {
		if c >= len(widths) {
			break
		}
		style := "D"
		switch {
		case cell.header:
			w.pdf.SetFillColor(colorAccent[0], colorAccent[1], colorAccent[2])
			style = "FD"
		case bodyIndex%2 == 1:
			w.pdf.SetFillColor(colorStripe[0], colorStripe[1], colorStripe[2])
			style = "FD"
		}
		w.pdf.Rect(x, y, widths[c], h, style)

		w.with(func(s *textStyle) {
			if cell.header {
				s.bold = true
				s.color = colorWhite
			}
		}, func() {
			w.pdf.SetXY(x+1.5, y+1)
			w.pdf.MultiCell(widths[c]-3, lh, w.text(cell.text), "", "L", false)
		})
		x += widths[c]
	}
	w.pdf.SetXY(w.left, y+h)
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

// collapseSpace folds whitespace runs into single spaces, keeping a
// leading or trailing space so adjacent inline runs stay separated.
func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	lead := isSpace(s[0])
	trail := isSpace(s[len(s)-1])
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		return " "
	}
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}
