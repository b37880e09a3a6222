package mdreport

// Notes:
// - Converter tests replace the PDF engine with fakeRenderer so the pipeline
//   can be checked without Chrome. The real engines are covered in
//   renderer_fpdf_test.go and, behind the integration tag, chrome_test.go.
// - The fixed clock makes the generated timestamps in the document
//   deterministic.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type fakeRenderer struct {
	called bool
	job    *renderJob
	output []byte
	err    error
	panics bool
	closed bool
}

func (f *fakeRenderer) Render(ctx context.Context, job *renderJob) ([]byte, error) {
	f.called = true
	f.job = job
	if f.panics {
		panic("renderer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return minimalPDF(), nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

// minimalPDF is a blank one-page PDF.
func minimalPDF() []byte {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCreationDate(fixedNow)
	pdf.SetModificationDate(fixedNow)
	pdf.AddPage()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestConverter(t *testing.T, r *fakeRenderer) *Converter {
	t.Helper()
	c, err := NewConverter(WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	c.renderer = r
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// ---------------------------------------------------------------------------
// TestNewConverter - Construction and engine selection
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []Option
		wantEngine string
		wantErr    error
	}{
		{name: "default engine", wantEngine: EngineChrome},
		{name: "chrome", opts: []Option{WithEngine("chrome")}, wantEngine: EngineChrome},
		{name: "fpdf", opts: []Option{WithEngine("fpdf")}, wantEngine: EngineFPDF},
		{name: "case insensitive", opts: []Option{WithEngine("FPDF")}, wantEngine: EngineFPDF},
		{name: "unknown engine", opts: []Option{WithEngine("weasyprint")}, wantErr: ErrInvalidEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewConverter(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewConverter() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConverter() error = %v", err)
			}
			defer c.Close()

			if got := c.Engine(); got != tt.wantEngine {
				t.Errorf("Engine() = %q, want %q", got, tt.wantEngine)
			}
		})
	}
}

func TestNewConverter_Templates(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &fakeRenderer{})

	if !strings.Contains(c.headerHTML, "ETL Production Deployment - Lessons Learned") {
		t.Errorf("header template missing running header: %q", c.headerHTML)
	}
	for _, want := range []string{`class="pageNumber"`, `class="totalPages"`} {
		if !strings.Contains(c.footerHTML, want) {
			t.Errorf("footer template missing %q: %q", want, c.footerHTML)
		}
	}
}

func TestWithTimeout_Panics(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("WithTimeout(%v) did not panic", d)
				}
			}()
			WithTimeout(d)
		}()
	}
}

func TestWithClock_IgnoresNil(t *testing.T) {
	t.Parallel()

	c, err := NewConverter(WithClock(nil))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	defer c.Close()

	if c.cfg.now == nil {
		t.Fatal("WithClock(nil) cleared the clock")
	}
}

// ---------------------------------------------------------------------------
// TestConvert - Pipeline orchestration
// ---------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	c := newTestConverter(t, r)

	md := "# Report\n\n## Executive Summary\n\nAll **green**.\n\n## Production Metrics\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"
	res, err := c.Convert(context.Background(), Input{Markdown: md})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	html := string(res.HTML)
	for _, want := range []string{
		`<html lang="pt-BR">`,
		`<h2 id="executive-summary">Executive Summary</h2>`,
		"<table>",
		"Generated: 14/03/2025 09:26",
		"Generated on: 14/03/2025 at 09:26:53",
		`content="2025-03-14T09:26:53Z"`,
		".chroma",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if !r.called {
		t.Fatal("renderer not called")
	}
	if r.job.html != html {
		t.Error("renderer received different HTML than the result")
	}
	if r.job.meta.Title != DefaultReport().Title || !r.job.meta.Created.Equal(fixedNow) {
		t.Errorf("renderer metadata = %+v", r.job.meta)
	}
	if r.job.runningHeader != DefaultReport().RunningHeader {
		t.Errorf("runningHeader = %q", r.job.runningHeader)
	}
	if !strings.HasPrefix(string(res.PDF), "%PDF-") {
		t.Errorf("PDF = %q", res.PDF)
	}

	var names []string
	for _, s := range Sections(res.Outline) {
		names = append(names, s.Text)
	}
	if got := strings.Join(names, "|"); got != "Executive Summary|Production Metrics" {
		t.Errorf("Sections = %q", got)
	}

	var stages []string
	for _, s := range res.Stages {
		stages = append(stages, s.Name)
	}
	if got := strings.Join(stages, ","); got != "preprocess,markdown,html,document,pdf" {
		t.Errorf("Stages = %q", got)
	}
}

func TestConvert_HTMLOnly(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	c := newTestConverter(t, r)

	res, err := c.Convert(context.Background(), Input{Markdown: "# Title", HTMLOnly: true})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if r.called {
		t.Error("renderer called in HTML-only mode")
	}
	if res.PDF != nil {
		t.Errorf("PDF = %q, want nil", res.PDF)
	}
	if len(res.HTML) == 0 {
		t.Error("HTML is empty")
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	renderErr := errors.New("chrome crashed")

	tests := []struct {
		name     string
		markdown string
		renderer *fakeRenderer
		ctx      func() context.Context
		wantErr  error
		wantMsg  string
	}{
		{
			name:     "empty markdown",
			markdown: "",
			renderer: &fakeRenderer{},
			wantErr:  ErrEmptyMarkdown,
		},
		{
			name:     "whitespace markdown",
			markdown: " \n\t",
			renderer: &fakeRenderer{},
			wantErr:  ErrEmptyMarkdown,
		},
		{
			name:     "renderer error",
			markdown: "# x",
			renderer: &fakeRenderer{err: renderErr},
			wantErr:  renderErr,
			wantMsg:  "rendering PDF",
		},
		{
			name:     "renderer panic",
			markdown: "# x",
			renderer: &fakeRenderer{panics: true},
			wantMsg:  "internal error: renderer exploded",
		},
		{
			name:     "cancelled context",
			markdown: "# x",
			renderer: &fakeRenderer{},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestConverter(t, tt.renderer)
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}

			res, err := c.Convert(ctx, Input{Markdown: tt.markdown})
			if err == nil {
				t.Fatal("Convert() error = nil")
			}
			if res != nil {
				t.Error("Convert() returned a result on error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Convert() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvertFile - File to file conversion
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, InputFileName, []byte("# Report\n\n## Summary\n\n![diagram](img/arch.png)\n"))
	output := filepath.Join(dir, OutputFileName)
	if err := os.WriteFile(output, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	rendered := minimalPDF()
	c := newTestConverter(t, &fakeRenderer{output: rendered})

	res, err := c.ConvertFile(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, rendered) {
		t.Error("output file was not replaced with the rendered PDF")
	}

	if res.PDF == nil || res.PDF.Pages != 1 || res.PDF.Size != int64(len(data)) {
		t.Errorf("PDF info = %+v", res.PDF)
	}
	if !filepath.IsAbs(res.InputPath) || !filepath.IsAbs(res.OutputPath) {
		t.Errorf("paths not absolute: %q, %q", res.InputPath, res.OutputPath)
	}
	if !strings.Contains(string(res.HTML), `src="file://`) {
		t.Error("relative image was not resolved against the input directory")
	}
}

func TestConvertFile_MissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, OutputFileName)

	r := &fakeRenderer{}
	c := newTestConverter(t, r)

	_, err := c.ConvertFile(context.Background(), filepath.Join(dir, InputFileName), output)
	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("ConvertFile() error = %v, want ErrInputNotFound", err)
	}
	if r.called {
		t.Error("renderer called for a missing input")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("output file created for a missing input")
	}
}

func TestConvertFile_InvalidPDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, "doc.md", []byte("# x\n"))

	c := newTestConverter(t, &fakeRenderer{output: []byte("not a pdf")})

	_, err := c.ConvertFile(context.Background(), input, filepath.Join(dir, "doc.pdf"))
	if !errors.Is(err, ErrInspectPDF) {
		t.Fatalf("ConvertFile() error = %v, want ErrInspectPDF", err)
	}
}

func TestConvertFile_MarkdownInHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFile(t, dir, InputFileName, []byte(
		"# Report\n\n<div class=\"warning-box\" markdown=\"1\">\n**Careful**: scale the consumers *before* the brokers.\n\n- lag alarms\n- retries\n</div>\n"))
	output := filepath.Join(dir, OutputFileName)

	c, err := NewConverter(WithEngine(EngineFPDF), WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	defer c.Close()

	res, err := c.ConvertFile(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}

	html := string(res.HTML)
	for _, want := range []string{
		`<div class="warning-box">`,
		"<strong>Careful</strong>",
		"<em>before</em>",
		"<li>lag alarms</li>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(html, `markdown="1"`) {
		t.Error("markdown attribute left in the HTML")
	}
	if res.PDF == nil || res.PDF.Pages < 1 || res.PDF.Size == 0 {
		t.Errorf("PDF info = %+v", res.PDF)
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	c, err := NewConverter()
	if err != nil {
		t.Fatal(err)
	}
	c.renderer = r

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !r.closed {
		t.Error("renderer not closed")
	}
}
