package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrDocumentRender indicates the document shell template failed.
var ErrDocumentRender = errors.New("document template rendering failed")

// DocumentData fills the document shell template.
type DocumentData struct {
	Lang     string
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// CreatedISO is the creation-date meta value (RFC 3339).
	CreatedISO string

	Heading        string
	Subtitle       string
	Organization   string
	GeneratedStamp string // header block, DD/MM/YYYY HH:mm
	GeneratedLong  string // footer block, DD/MM/YYYY at HH:mm:ss
	Project        string
	Status         string

	// Body is the trusted fragment produced by Postprocess.
	Body template.HTML
}

// DocumentBuilder renders the document shell and injects the stylesheet.
type DocumentBuilder struct {
	tmpl     *template.Template
	css      string
	injector CSSInjector
}

// NewDocumentBuilder parses the shell template. css is injected into every
// document it builds.
func NewDocumentBuilder(tmplContent, css string) (*DocumentBuilder, error) {
	tmpl, err := template.New("document").Option("missingkey=error").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentBuilder{tmpl: tmpl, css: css, injector: &CSSInjection{}}, nil
}

// Build renders a complete HTML document.
func (b *DocumentBuilder) Build(ctx context.Context, data *DocumentData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data == nil {
		return "", fmt.Errorf("%w: nil data", ErrDocumentRender)
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return b.injector.InjectCSS(ctx, buf.String(), b.css), nil
}

// RenderPrintTemplate renders a running header or footer template.
// Chrome evaluates these in their own page, so they carry inline styles.
func RenderPrintTemplate(tmplContent string, data any) (string, error) {
	tmpl, err := template.New("print").Option("missingkey=error").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return buf.String(), nil
}

// CSSInjector inserts a stylesheet into an HTML document.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, else right after
// <body>, else at the start. The CSS is sanitized so it cannot close the
// style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>\n" + sanitizeCSS(cssContent) + "\n</style>\n"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so the stylesheet cannot end the <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
