// Package hints builds the actionable "hint:" suffixes appended to CLI errors.
// Every hint is formatted as "\n  hint: <text>".
package hints

import (
	"path/filepath"
	"strings"
)

// ciVars are set by the CI services mdreport knows about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI", "BUILDKITE"}

// InCI reports whether a known CI environment variable is set.
func InCI(getenv func(string) string) bool {
	for _, key := range ciVars {
		if getenv(key) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect returns hints for Chrome launch failures. inContainer
// comes from the caller's container detection.
func ForBrowserConnect(getenv func(string) string, inContainer bool) string {
	var hints []string

	if (InCI(getenv) || inContainer) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a local Chrome")
	}
	hints = append(hints, "or use --engine fpdf (no browser needed)")

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the render timeout.
func ForTimeout() string {
	return format("for large documents, raise --timeout or MDREPORT_TIMEOUT")
}

// ForInputNotFound explains where the fixed input file is expected.
func ForInputNotFound(inputPath string) string {
	dir := filepath.Dir(inputPath)
	return format("place " + filepath.Base(inputPath) + " in " + dir + " or point -C/--dir at its directory")
}

// ForConfigNotFound suggests --config, or the user config path that was tried.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/mdreport/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForInvalidEngine lists the engines that can be chosen.
func ForInvalidEngine(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available engines: " + strings.Join(available, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
