package mdreport

import (
	"time"

	"github.com/alnah/go-mdreport/internal/pipeline"
)

// Engine names accepted by WithEngine.
const (
	EngineChrome = "chrome"
	EngineFPDF   = "fpdf"
)

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// Input contains conversion parameters.
type Input struct {
	Markdown  string // Markdown content (required)
	SourceDir string // Base for relative images and links ("" = leave them)
	HTMLOnly  bool   // Skip PDF rendering
}

// Heading is one entry of the document outline.
type Heading = pipeline.Heading

// Sections returns the outline entries naming the main sections: the
// second level under a single title, otherwise the top level.
func Sections(outline []Heading) []Heading {
	return pipeline.Sections(outline)
}

// Stage is the wall time of one conversion step.
type Stage struct {
	Name     string
	Duration time.Duration
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	HTML    []byte    // Complete HTML document
	PDF     []byte    // Nil when Input.HTMLOnly is set
	Outline []Heading // Body headings in order
	Stages  []Stage
}

// FileResult describes a converted file.
type FileResult struct {
	InputPath  string
	OutputPath string
	Charset    string
	HTML       []byte
	Outline    []Heading
	Stages     []Stage
	PDF        *PDFInfo
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout    time.Duration
	engine     string
	browserBin string
	noSandbox  bool
	now        func() time.Time
}

// WithTimeout bounds page loading in the Chrome engine.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdreport: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithEngine selects the PDF engine: EngineChrome (default) or EngineFPDF.
// An unknown name makes NewConverter fail with ErrInvalidEngine.
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.cfg.engine = name
	}
}

// WithClock sets the time source for the generation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.cfg.now = now
		}
	}
}

// WithBrowserBin sets the Chrome binary. Takes precedence over ROD_BROWSER_BIN.
func WithBrowserBin(path string) Option {
	return func(c *Converter) {
		c.cfg.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox (containers, CI).
func WithNoSandbox(noSandbox bool) Option {
	return func(c *Converter) {
		c.cfg.noSandbox = noSandbox
	}
}
