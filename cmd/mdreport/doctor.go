package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdreport"
	"github.com/alnah/go-mdreport/internal/hints"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Chrome   chromeInfo   `json:"chrome"`
	Engines  []engineInfo `json:"engines"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// engineInfo reports whether a PDF engine can run here.
type engineInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Selected  bool   `json:"selected"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
	Engine        string `json:"engine,omitempty"`
}

type systemInfo struct {
	TempDir      string `json:"temp_dir"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code:
// 0 when ready (warnings included), 1 when a required check fails.
// The selected engine is resolved as a conversion resolves it: config
// file (-c or MDREPORT_CONFIG), then MDREPORT_ENGINE.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "output as JSON")
	f := &cliFlags{}
	fs.StringVarP(&f.dir, "dir", "C", "", "directory holding the report")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")

	if err := fs.Parse(args); err != nil {
		reportError(env, usageError(fmt.Errorf("doctor: %v", err)), nil)
		return ExitUsage
	}
	if fs.NArg() > 0 {
		reportError(env, usageError(fmt.Errorf("doctor: unknown argument %q", fs.Arg(0))), nil)
		return ExitUsage
	}

	j, err := resolveJob(f, env)
	if err != nil {
		reportError(env, err, j)
		return exitCodeFor(err)
	}

	result := runDoctor(env.Getenv, j.cfg.Render.Engine)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitFailure
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. engine is the resolved
// render.engine ("" means chrome).
func runDoctor(getenv func(string) string, engine string) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  getenv("ROD_NO_SANDBOX"),
			BrowserBin: getenv("ROD_BROWSER_BIN"),
			Engine:     strings.ToLower(engine),
		},
	}

	checkChrome(result)
	checkEngines(result)
	checkEnvironment(result, getenv)
	checkSystem(result)

	switch {
	case len(result.Errors) > 0:
		result.Status = statusErrors
	case len(result.Warnings) > 0:
		result.Status = statusWarnings
	}
	return result
}

// checkChrome locates Chrome the way the renderer will: ROD_BROWSER_BIN,
// then rod's launcher lookup.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"

	// #nosec G204 -- chromePath comes from ROD_BROWSER_BIN or the launcher lookup
	out, err := exec.Command(chromePath, "--version").Output()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return
	}
	result.Chrome.Version = strings.TrimSpace(string(out))
}

// checkEngines reports engine availability. A missing Chrome is an error
// only when Chrome is the selected engine; fpdf needs nothing.
func checkEngines(result *doctorResult) {
	selected := result.Env.Engine
	if selected == "" {
		selected = mdreport.EngineChrome
	}

	for _, name := range mdreport.Engines() {
		available := name != mdreport.EngineChrome || result.Chrome.Found
		result.Engines = append(result.Engines, engineInfo{
			Name:      name,
			Available: available,
			Selected:  name == selected,
		})
	}

	if !result.Chrome.Found {
		msg := "Chrome/Chromium not found. Install Chrome, set ROD_BROWSER_BIN, or use --engine fpdf"
		if selected == mdreport.EngineChrome {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = isContainer(getenv)

	result.Env.CI = hints.InCI(getenv)

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Chrome.Found {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer returns whether a container signal is present and which.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("MDREPORT_CONTAINER") == "1" {
		return true, "MDREPORT_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if _, err := os.Stat("/run/.containerenv"); err == nil {
		return true, "/run/.containerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for the Chrome page is
// writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	result.System.TempDir = tmpDir

	f, err := os.CreateTemp(tmpDir, "mdreport-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdreport doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Engines")
	for _, e := range r.Engines {
		mark, state := "[OK]", "available"
		if !e.Available {
			mark, state = "[--]", "unavailable"
		}
		if e.Selected {
			state += ", selected"
		}
		fmt.Fprintf(w, "  %s %s (%s)\n", mark, e.Name, state)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: %s (writable)\n", filepath.Clean(r.System.TempDir))
	} else {
		fmt.Fprintf(w, "  [ERROR] Temp directory: %s (not writable)\n", filepath.Clean(r.System.TempDir))
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
