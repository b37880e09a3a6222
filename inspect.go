package mdreport

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// pdfMIME is the detected type every generated file must have.
const pdfMIME = "application/pdf"

// PDFInfo describes a PDF file on disk.
type PDFInfo struct {
	Path  string // Absolute path
	Size  int64  // Bytes
	MIME  string
	Pages int
	Title string // Info dictionary title, "" if absent
}

// KB returns the size in kibibytes, as printed in the summary.
func (i *PDFInfo) KB() float64 {
	return float64(i.Size) / 1024
}

// InspectPDF checks that path holds a readable PDF and reports its size
// and page count. The parser is not trusted on malformed input: a panic
// while reading is reported as ErrInspectPDF.
func InspectPDF(path string) (info *PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("%w: %s: %v", ErrInspectPDF, path, r)
		}
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInspectPDF, err)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInspectPDF, err)
	}

	mtype, err := mimetype.DetectFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInspectPDF, err)
	}
	if !mtype.Is(pdfMIME) {
		return nil, fmt.Errorf("%w: %s is %s, not %s", ErrInspectPDF, abs, mtype.String(), pdfMIME)
	}

	f, r, err := pdf.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInspectPDF, err)
	}
	defer func() { _ = f.Close() }()

	return &PDFInfo{
		Path:  abs,
		Size:  st.Size(),
		MIME:  mtype.String(),
		Pages: r.NumPage(),
		Title: r.Trailer().Key("Info").Key("Title").Text(),
	}, nil
}
