package main

import (
	"errors"
	"io"

	flag "github.com/spf13/pflag"
)

// cliFlags holds the conversion flags. File names, metadata and style are
// fixed; flags only tune where and how the report is rendered.
type cliFlags struct {
	dir     string
	config  string
	engine  string
	timeout string
	html    bool
	quiet   bool
	verbose bool
	version bool
	help    bool
}

// parseFlags parses the conversion flags and returns any positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("mdreport", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &cliFlags{}

	fs.StringVarP(&f.dir, "dir", "C", "", "directory holding the report (default: current)")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.engine, "engine", "", "PDF engine: chrome, fpdf")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.html, "html", false, "also write the intermediate HTML")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and effective config")
	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			f.help = true
			return f, nil, nil
		}
		return nil, nil, usageError(err)
	}

	if f.quiet && f.verbose {
		return nil, nil, usageError(errors.New("--quiet and --verbose are mutually exclusive"))
	}

	return f, fs.Args(), nil
}
