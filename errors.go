package mdreport

import (
	"errors"

	"github.com/alnah/go-mdreport/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Source errors.
	ErrInputNotFound = errors.New("input file not found")
	ErrReadMarkdown  = errors.New("failed to read markdown file")
	ErrNotText       = errors.New("input is not a text file")
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")

	// Pipeline errors.
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrDocumentRender = pipeline.ErrDocumentRender

	// Rendering errors.
	ErrInvalidEngine  = errors.New("invalid render engine")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Output errors.
	ErrWritePDF   = errors.New("failed to write PDF file")
	ErrInspectPDF = errors.New("failed to inspect PDF")
)
