package mdreport

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdreport/internal/fileutil"
	"github.com/alnah/go-mdreport/internal/process"
)

// A4 with 2cm margins, in inches. The stylesheet's @page rule says the
// same; these apply if Chrome ignores it.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.79
)

// rodRenderer prints HTML to PDF with headless Chrome via go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	cfg      converterConfig
	launcher *launcher.Launcher
	browser  *rod.Browser
	pid      int
}

func newRodRenderer(cfg converterConfig) *rodRenderer {
	return &rodRenderer{cfg: cfg}
}

// browserBin picks the Chrome binary: option, then ROD_BROWSER_BIN.
func (r *rodRenderer) browserBin() string {
	if r.cfg.browserBin != "" {
		return r.cfg.browserBin
	}
	return os.Getenv("ROD_BROWSER_BIN")
}

// noSandbox is required in CI and most containers.
func (r *rodRenderer) noSandbox() bool {
	return r.cfg.noSandbox ||
		os.Getenv("ROD_NO_SANDBOX") == "1" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()
	if bin := r.browserBin(); bin != "" {
		l = l.Bin(bin)
	}
	if r.noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.pid = l.PID()

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return nil
}

// Render writes the document to a temp file, loads it in a new page and
// prints it with the running header and page-numbered footer.
func (r *rodRenderer) Render(ctx context.Context, job *renderJob) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(job.html, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: fileURL(tmpPath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.cfg.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx)

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(printOptions(job))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBuf, nil
}

// printOptions builds the print request: A4, backgrounds on, CSS page size
// preferred, header and footer templates when present.
func printOptions(job *renderJob) *proto.PagePrintToPDF {
	opts := &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(a4WidthInches),
		PaperHeight:       floatPtr(a4HeightInches),
		MarginTop:         floatPtr(marginInches),
		MarginBottom:      floatPtr(marginInches),
		MarginLeft:        floatPtr(marginInches),
		MarginRight:       floatPtr(marginInches),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}

	if job.headerHTML != "" || job.footerHTML != "" {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate = orEmptySpan(job.headerHTML)
		opts.FooterTemplate = orEmptySpan(job.footerHTML)
	}
	return opts
}

// Chrome prints its default title/URL header when a template is empty.
func orEmptySpan(tmpl string) string {
	if strings.TrimSpace(tmpl) == "" {
		return "<span></span>"
	}
	return tmpl
}

// Close releases the browser and kills its process group.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.kill()
	return err
}

// kill takes down Chrome and its helper processes.
func (r *rodRenderer) kill() {
	if r.launcher == nil {
		return
	}
	process.KillProcessGroup(r.pid)
	if r.pid <= 0 || process.Alive(r.pid) {
		r.launcher.Kill()
	}
	r.launcher.Cleanup()
	r.launcher = nil
	r.pid = 0
}

// fileURL converts a local path to a file:// URL Chrome can open.
func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func floatPtr(v float64) *float64 {
	return &v
}
