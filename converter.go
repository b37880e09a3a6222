package mdreport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-mdreport/internal/assets"
	"github.com/alnah/go-mdreport/internal/fileutil"
	"github.com/alnah/go-mdreport/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Preprocessor  = (*pipeline.SourcePreprocessor)(nil)
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ pdfRenderer            = (*rodRenderer)(nil)
	_ pdfRenderer            = (*fpdfRenderer)(nil)
)

// Converter runs the Markdown-to-PDF pipeline for the report.
// Create with NewConverter, use Convert or ConvertFile, and Close when done.
// A Converter is not safe for concurrent use.
type Converter struct {
	cfg           converterConfig
	report        Report
	preprocessor  pipeline.Preprocessor
	htmlConverter pipeline.HTMLConverter
	document      *pipeline.DocumentBuilder
	headerHTML    string
	footerHTML    string
	renderer      pdfRenderer
}

// NewConverter creates a Converter. Returns an error for an unknown engine
// or if the embedded assets fail to load.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			engine:  EngineChrome,
			now:     time.Now,
		},
		report:        DefaultReport(),
		preprocessor:  &pipeline.SourcePreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	bundle, err := assets.DefaultBundle()
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	highlightCSS, err := pipeline.HighlightCSS()
	if err != nil {
		return nil, err
	}

	c.document, err = pipeline.NewDocumentBuilder(bundle.Document, bundle.Style+"\n"+highlightCSS)
	if err != nil {
		return nil, err
	}

	c.headerHTML, err = pipeline.RenderPrintTemplate(bundle.Header, struct{ RunningHeader string }{c.report.RunningHeader})
	if err != nil {
		return nil, fmt.Errorf("rendering page header: %w", err)
	}
	c.footerHTML, err = pipeline.RenderPrintTemplate(bundle.Footer, nil)
	if err != nil {
		return nil, fmt.Errorf("rendering page footer: %w", err)
	}

	c.renderer, err = newRenderer(c.cfg)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Engine returns the name of the selected PDF engine.
func (c *Converter) Engine() string {
	if c.cfg.engine == "" {
		return EngineChrome
	}
	return strings.ToLower(c.cfg.engine)
}

// Convert runs the pipeline on input.Markdown and returns the HTML, the
// PDF and the document outline. If input.HTMLOnly is true, PDF rendering
// is skipped. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if strings.TrimSpace(input.Markdown) == "" {
		return nil, ErrEmptyMarkdown
	}

	res := &ConvertResult{}
	stage := func(name string, start time.Time) {
		res.Stages = append(res.Stages, Stage{Name: name, Duration: time.Since(start)})
	}

	start := time.Now()
	prepared, err := c.preprocessor.Preprocess(ctx, input.Markdown)
	if err != nil {
		return nil, err
	}
	stage("preprocess", start)

	start = time.Now()
	fragment, err := c.htmlConverter.ToHTML(ctx, prepared.Markdown)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}
	stage("markdown", start)

	start = time.Now()
	body, err := pipeline.Postprocess(ctx, fragment, pipeline.PostOptions{
		SourceDir:     input.SourceDir,
		Abbreviations: prepared.Abbreviations,
	})
	if err != nil {
		return nil, fmt.Errorf("processing HTML: %w", err)
	}
	res.Outline = body.Outline
	stage("html", start)

	start = time.Now()
	now := c.cfg.now()
	htmlDoc, err := c.document.Build(ctx, c.report.documentData(now, body.HTML))
	if err != nil {
		return nil, fmt.Errorf("building document: %w", err)
	}
	res.HTML = []byte(htmlDoc)
	stage("document", start)

	if input.HTMLOnly {
		return res, nil
	}

	start = time.Now()
	pdfBytes, err := c.renderer.Render(ctx, &renderJob{
		html:          htmlDoc,
		meta:          c.report.metadata(now),
		runningHeader: c.report.RunningHeader,
		headerHTML:    c.headerHTML,
		footerHTML:    c.footerHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	res.PDF = pdfBytes
	stage("pdf", start)

	return res, nil
}

// ConvertFile converts the Markdown file at inputPath and writes the PDF
// to outputPath, replacing any previous file. A missing input fails with
// ErrInputNotFound before any conversion work.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) (*FileResult, error) {
	src, err := ReadSource(inputPath)
	if err != nil {
		return nil, err
	}

	res, err := c.Convert(ctx, Input{Markdown: src.Markdown, SourceDir: src.Dir})
	if err != nil {
		return nil, err
	}

	if err := fileutil.ReplaceFile(outputPath, res.PDF); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}

	info, err := InspectPDF(outputPath)
	if err != nil {
		return nil, err
	}

	return &FileResult{
		InputPath:  src.Path,
		OutputPath: info.Path,
		Charset:    src.Charset,
		HTML:       res.HTML,
		Outline:    res.Outline,
		Stages:     res.Stages,
		PDF:        info,
	}, nil
}

// Close releases the renderer (and the Chrome process, if one was started).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
