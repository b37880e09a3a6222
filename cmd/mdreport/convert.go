package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdreport"
	"github.com/alnah/go-mdreport/internal/config"
	"github.com/alnah/go-mdreport/internal/fileutil"
	"github.com/alnah/go-mdreport/internal/yamlutil"
)

// ErrBaseDir is returned when the base directory cannot be determined.
var ErrBaseDir = errors.New("cannot determine base directory")

// job is one resolved run: where the files are and how to render them.
type job struct {
	baseDir    string
	inputPath  string
	outputPath string
	htmlPath   string
	cfg        *config.Config
	searched   []string // config locations tried, for hints
}

// runConvert converts the fixed input file and reports the outcome.
// Returns the process exit code.
func runConvert(ctx context.Context, f *cliFlags, env *Environment) int {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	j, err := resolveJob(f, env)
	if err != nil {
		reportError(env, err, j)
		return exitCodeFor(err)
	}

	out := env.Stdout
	if j.cfg.Output.Quiet {
		out = io.Discard
	}

	fmt.Fprintln(out, "🔄 Starting PDF generation...")
	fmt.Fprintf(out, "📁 Source: %s\n", j.inputPath)
	fmt.Fprintf(out, "📄 Output: %s\n", j.outputPath)

	if j.cfg.Output.Verbose {
		printConfig(env.Stderr, j.cfg)
	}

	res, err := convert(ctx, j, env)
	if err != nil {
		reportError(env, err, j)
		if !errors.Is(err, mdreport.ErrInputNotFound) && exitCodeFor(err) != ExitUsage {
			fmt.Fprintln(env.Stderr)
			fmt.Fprintln(env.Stderr, "❌ PDF Generation Failed!")
		}
		return exitCodeFor(err)
	}

	fmt.Fprintf(out, "✅ PDF successfully generated: %s\n", res.OutputPath)
	fmt.Fprintf(out, "📄 File size: %.1f KB (%s)\n", res.PDF.KB(), plural(res.PDF.Pages, "page"))
	if j.cfg.Output.HTML {
		fmt.Fprintf(out, "🌐 HTML: %s\n", j.htmlPath)
	}

	if j.cfg.Output.Verbose {
		printStages(env.Stderr, res)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "🎉 PDF Generation Complete!")
	fmt.Fprintf(out, "📂 Location: %s\n", res.OutputPath)
	printContents(out, res.Outline, terminalWidth(env.Stdout, env.Getenv, defaultWidth))

	return ExitSuccess
}

// resolveJob settles the base directory, the fixed paths and the
// effective configuration (flag > env > file > default).
func resolveJob(f *cliFlags, env *Environment) (*job, error) {
	baseDir := f.dir
	if baseDir == "" {
		wd, err := env.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBaseDir, err)
		}
		baseDir = wd
	}
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaseDir, err)
	}

	j := &job{
		baseDir:    baseDir,
		inputPath:  filepath.Join(baseDir, mdreport.InputFileName),
		outputPath: filepath.Join(baseDir, mdreport.OutputFileName),
		htmlPath:   filepath.Join(baseDir, strings.TrimSuffix(mdreport.OutputFileName, ".pdf")+".html"),
		cfg:        config.DefaultConfig(),
	}

	envCfg := loadEnvConfig(env.Getenv)
	configName := f.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		if !fileutil.IsFilePath(configName) {
			j.searched = config.SearchPaths(configName, baseDir)
		}
		cfg, err := config.LoadConfig(configName, baseDir)
		if err != nil {
			return j, fmt.Errorf("loading config: %w", err)
		}
		j.cfg = cfg
	}

	applyEnvConfig(envCfg, j.cfg)
	mergeFlags(f, j.cfg)

	if err := j.cfg.Validate(); err != nil {
		return j, err
	}
	return j, nil
}

// convert checks the input, then runs the converter. The input check comes
// first so a missing file never starts a browser.
func convert(ctx context.Context, j *job, env *Environment) (*mdreport.FileResult, error) {
	if !fileutil.FileExists(j.inputPath) {
		return nil, fmt.Errorf("%w: %s", mdreport.ErrInputNotFound, j.inputPath)
	}

	opts := []mdreport.Option{
		mdreport.WithEngine(j.cfg.Render.Engine),
		mdreport.WithBrowserBin(j.cfg.Browser.Bin),
		mdreport.WithNoSandbox(j.cfg.Browser.NoSandbox),
		mdreport.WithClock(env.Now),
	}
	if d := j.cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, mdreport.WithTimeout(d))
	}

	conv, err := env.NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conv.Close() }()

	res, err := conv.ConvertFile(ctx, j.inputPath, j.outputPath)
	if err != nil {
		return nil, err
	}

	if j.cfg.Output.HTML {
		if err := fileutil.ReplaceFile(j.htmlPath, res.HTML); err != nil {
			return nil, fmt.Errorf("writing HTML: %w", err)
		}
	}
	return res, nil
}

// reportError prints err with its hint on env.Stderr. j may be nil.
func reportError(env *Environment, err error, j *job) {
	var inputPath string
	var searched []string
	if j != nil {
		inputPath, searched = j.inputPath, j.searched
	}
	hint := hintFor(err, inputPath, searched, env.Getenv)
	w := env.Stderr

	switch {
	case errors.Is(err, mdreport.ErrInputNotFound):
		fmt.Fprintf(w, "❌ Markdown file not found: %s%s\n", inputPath, hint)
	case exitCodeFor(err) == ExitUsage:
		fmt.Fprintf(w, "mdreport: %v%s\n", err, hint)
		fmt.Fprintln(w, "Run 'mdreport help' for usage.")
	default:
		fmt.Fprintf(w, "❌ Error generating PDF: %v%s\n", err, hint)
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(w, "warning: cannot print config: %v\n", err)
		return
	}
	fmt.Fprintln(w, "Effective configuration:")
	fmt.Fprint(w, string(data))
}

func printStages(w io.Writer, res *mdreport.FileResult) {
	fmt.Fprintf(w, "Input charset: %s\n", res.Charset)
	var total time.Duration
	for _, s := range res.Stages {
		fmt.Fprintf(w, "  %-10s %v\n", s.Name, s.Duration.Round(time.Millisecond))
		total += s.Duration
	}
	fmt.Fprintf(w, "  %-10s %v\n", "total", total.Round(time.Millisecond))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
