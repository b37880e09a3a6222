// Package config loads the optional mdreport YAML configuration.
//
// Configuration tunes how the report is rendered (engine, timeout, browser)
// and how the CLI reports progress. It never changes the input and output
// file names, the report metadata, or the stylesheet.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-mdreport/internal/fileutil"
	"github.com/alnah/go-mdreport/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppDir is the directory name under os.UserConfigDir searched for configs.
const AppDir = "mdreport"

// Limits applied by Validate.
const (
	MaxPathLength = 4096
	MaxTimeout    = 10 * time.Minute
)

// Engines lists the accepted render.engine values.
var Engines = []string{"chrome", "fpdf"}

// Config holds the render and output settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
}

// RenderConfig selects the PDF engine and bounds render time.
type RenderConfig struct {
	Engine  string `yaml:"engine"`  // "chrome" or "fpdf" (empty = chrome)
	Timeout string `yaml:"timeout"` // Go duration, e.g. "45s" (empty = library default)
}

// BrowserConfig tunes the headless Chrome launch.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`       // Chrome binary (empty = rod lookup / ROD_BROWSER_BIN)
	NoSandbox bool   `yaml:"noSandbox"` // Needed in most containers
}

// OutputConfig controls side outputs and console verbosity.
type OutputConfig struct {
	HTML    bool `yaml:"html"` // Also write the intermediate HTML next to the PDF
	Quiet   bool `yaml:"quiet"`
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the zero configuration: Chrome engine, library
// timeout, normal verbosity.
func DefaultConfig() *Config {
	return &Config{}
}

// TimeoutDuration parses Render.Timeout. Zero means "use the default".
// Call Validate first; an unparsable value yields zero.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Render.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Render.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks enumerations, durations and field lengths.
// Called by LoadConfig; also usable on a hand-built Config.
func (c *Config) Validate() error {
	if c.Render.Engine != "" && !slices.Contains(Engines, strings.ToLower(c.Render.Engine)) {
		return fmt.Errorf("%w: render.engine %q (must be one of %s)",
			ErrInvalidValue, c.Render.Engine, strings.Join(Engines, ", "))
	}

	if c.Render.Timeout != "" {
		d, err := time.ParseDuration(c.Render.Timeout)
		if err != nil {
			return fmt.Errorf("%w: render.timeout %q: %v", ErrInvalidValue, c.Render.Timeout, err)
		}
		if d <= 0 || d > MaxTimeout {
			return fmt.Errorf("%w: render.timeout must be between 0 and %s, got %s",
				ErrInvalidValue, MaxTimeout, d)
		}
	}

	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}

	if c.Output.Quiet && c.Output.Verbose {
		return fmt.Errorf("%w: output.quiet and output.verbose are mutually exclusive", ErrInvalidValue)
	}

	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is a file path, resolved against
// baseDir when relative. Otherwise it is a name searched by SearchPaths.
// A missing file is an error (no silent fallback).
func LoadConfig(nameOrPath, baseDir string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
		if !filepath.IsAbs(configPath) && baseDir != "" {
			configPath = filepath.Join(baseDir, configPath)
		}
	} else {
		var err error
		configPath, err = resolveConfigPath(nameOrPath, baseDir)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// SearchPaths lists, in lookup order, where a config name is looked for:
// <baseDir>/<name>.yaml|.yml, then <UserConfigDir>/mdreport/<name>.yaml|.yml.
func SearchPaths(name, baseDir string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, filepath.Join(baseDir, name+ext))
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name, baseDir string) (string, error) {
	tried := SearchPaths(name, baseDir)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
