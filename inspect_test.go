package mdreport

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// TestInspectPDF - Output verification
// ---------------------------------------------------------------------------

func TestInspectPDF(t *testing.T) {
	t.Parallel()

	data := minimalPDF()
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := InspectPDF(path)
	if err != nil {
		t.Fatalf("InspectPDF() error = %v", err)
	}
	if info.Pages != 1 {
		t.Errorf("Pages = %d, want 1", info.Pages)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", info.Size, len(data))
	}
	if info.MIME != pdfMIME {
		t.Errorf("MIME = %q, want %q", info.MIME, pdfMIME)
	}
	if !filepath.IsAbs(info.Path) {
		t.Errorf("Path = %q, want absolute", info.Path)
	}
}

func TestInspectPDF_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	text := writeFile(t, dir, "report.pdf", []byte("# not a pdf\n"))
	truncated := writeFile(t, dir, "truncated.pdf", minimalPDF()[:40])

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.pdf")},
		{name: "not a pdf", path: text},
		{name: "truncated pdf", path: truncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info, err := InspectPDF(tt.path)
			if !errors.Is(err, ErrInspectPDF) {
				t.Errorf("InspectPDF() error = %v, want ErrInspectPDF", err)
			}
			if info != nil {
				t.Errorf("InspectPDF() info = %+v, want nil", info)
			}
		})
	}
}

func TestPDFInfo_KB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int64
		want float64
	}{
		{0, 0},
		{1024, 1},
		{1536, 1.5},
		{52326, 51.099609375},
	}

	for _, tt := range tests {
		info := &PDFInfo{Size: tt.size}
		if got := info.KB(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("KB() for %d bytes = %v, want %v", tt.size, got, tt.want)
		}
	}
}
