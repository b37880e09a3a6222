package mdreport

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page geometry for the fpdf engine, in millimetres.
const (
	fpdfMargin       = 20.0
	fpdfHeaderY      = 9.0
	fpdfFooterOffset = -14.0
)

// fpdfRenderer draws the HTML document with gofpdf's core fonts.
// No browser is involved: the document tree is walked and laid out
// directly, so CSS is not interpreted beyond the report's own classes.
type fpdfRenderer struct{}

func newFPDFRenderer() *fpdfRenderer {
	return &fpdfRenderer{}
}

// Render lays out job.html on A4 pages with a running header and a
// "Page N of M" footer.
func (r *fpdfRenderer) Render(ctx context.Context, job *renderJob) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(job.html))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrPDFGeneration, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfSafe(s)) }

	pdf.SetMargins(fpdfMargin, fpdfMargin, fpdfMargin)
	pdf.SetAutoPageBreak(true, fpdfMargin)
	pdf.AliasNbPages("")
	setMetadata(pdf, job.meta)

	pdf.SetHeaderFunc(func() {
		pdf.SetY(fpdfHeaderY)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0x66, 0x66, 0x66)
		pdf.CellFormat(0, 5, text(job.runningHeader), "", 0, "C", false, 0, "")
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(fpdfFooterOffset)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0x66, 0x66, 0x66)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	w := newFPDFWriter(ctx, pdf, text)
	w.children(findBody(doc))
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// Close is a no-op: the fpdf engine holds no resources between renders.
func (r *fpdfRenderer) Close() error {
	return nil
}

func setMetadata(pdf *gofpdf.Fpdf, m pdfMetadata) {
	pdf.SetTitle(m.Title, true)
	pdf.SetAuthor(m.Author, true)
	pdf.SetSubject(m.Subject, true)
	pdf.SetKeywords(m.Keywords, true)
	pdf.SetCreator(m.Creator, true)
	pdf.SetProducer(m.Producer, true)
	if !m.Created.IsZero() {
		pdf.SetCreationDate(m.Created)
	}
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	if body == nil {
		return doc
	}
	return body
}

// symbolReplacer spells out common symbols missing from cp1252.
var symbolReplacer = strings.NewReplacer(
	"→", "->",
	"←", "<-",
	"⇒", "=>",
	"≥", ">=",
	"≤", "<=",
	"✓", "v",
	"✔", "v",
)

// pdfSafe drops runes the core fonts cannot draw (emoji, pictographs,
// variation selectors) after spelling out the common arrows.
func pdfSafe(s string) string {
	s = symbolReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x2000:
			return r
		case r >= 0x2010 && r <= 0x203A: // dashes, quotes, bullet, ellipsis
			return r
		case r == 0x20AC || r == 0x2122: // euro, trademark
			return r
		}
		return -1
	}, s)
}
