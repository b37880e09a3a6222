package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alnah/go-mdreport/internal/config"
)

// envPrefix is the prefix of every variable read by mdreport.
const envPrefix = "MDREPORT_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string // MDREPORT_CONFIG: config file name or path
	Engine     string // MDREPORT_ENGINE: chrome or fpdf
	Timeout    string // MDREPORT_TIMEOUT: Go duration
}

// knownEnvVars lists valid MDREPORT_* variables, to catch typos.
var knownEnvVars = map[string]bool{
	"MDREPORT_CONFIG":    true,
	"MDREPORT_ENGINE":    true,
	"MDREPORT_TIMEOUT":   true,
	"MDREPORT_CONTAINER": true, // doctor only
}

func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: getenv("MDREPORT_CONFIG"),
		Engine:     getenv("MDREPORT_ENGINE"),
		Timeout:    getenv("MDREPORT_TIMEOUT"),
	}
}

// warnUnknownEnvVars prints a warning for each unrecognized MDREPORT_*
// variable, in name order.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overlays environment values on the file config.
// Flags are merged afterwards, giving flag > env > file > default.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Engine != "" {
		cfg.Render.Engine = env.Engine
	}
	if env.Timeout != "" {
		cfg.Render.Timeout = env.Timeout
	}
}

// mergeFlags overlays explicitly set flags on cfg.
func mergeFlags(f *cliFlags, cfg *config.Config) {
	if f.engine != "" {
		cfg.Render.Engine = f.engine
	}
	if f.timeout != "" {
		cfg.Render.Timeout = f.timeout
	}
	if f.html {
		cfg.Output.HTML = true
	}
	if f.quiet {
		cfg.Output.Quiet = true
		cfg.Output.Verbose = false
	}
	if f.verbose {
		cfg.Output.Verbose = true
		cfg.Output.Quiet = false
	}
}
