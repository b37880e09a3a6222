package mdreport

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// pdfRenderer turns a complete HTML document into PDF bytes.
type pdfRenderer interface {
	Render(ctx context.Context, job *renderJob) ([]byte, error)
	Close() error
}

// renderJob is everything an engine needs for one document.
type renderJob struct {
	html          string
	meta          pdfMetadata
	runningHeader string
	headerHTML    string // Chrome print template
	footerHTML    string // Chrome print template
}

// pdfMetadata is written to the PDF info dictionary by engines that
// control it. Chrome takes the title from <title> and sets its own producer.
type pdfMetadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	Created  time.Time
}

// Engines lists the accepted engine names.
func Engines() []string {
	return []string{EngineChrome, EngineFPDF}
}

// newRenderer builds the engine named in cfg. Engines start lazily: no
// browser is launched until the first Render.
func newRenderer(cfg converterConfig) (pdfRenderer, error) {
	switch strings.ToLower(cfg.engine) {
	case "", EngineChrome:
		return newRodRenderer(cfg), nil
	case EngineFPDF:
		return newFPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be one of %s)", ErrInvalidEngine, cfg.engine, strings.Join(Engines(), ", "))
	}
}
