package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Render.Engine != "" {
		t.Errorf("Render.Engine = %q, want empty", cfg.Render.Engine)
	}
	if cfg.TimeoutDuration() != 0 {
		t.Errorf("TimeoutDuration() = %v, want 0", cfg.TimeoutDuration())
	}
	if cfg.Output.HTML || cfg.Output.Quiet || cfg.Output.Verbose {
		t.Errorf("Output = %+v, want all false", cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "chrome engine", cfg: Config{Render: RenderConfig{Engine: "chrome"}}},
		{name: "engine is case-insensitive", cfg: Config{Render: RenderConfig{Engine: "FPDF"}}},
		{name: "unknown engine", cfg: Config{Render: RenderConfig{Engine: "weasyprint"}}, wantErr: ErrInvalidValue},
		{name: "valid timeout", cfg: Config{Render: RenderConfig{Timeout: "90s"}}},
		{name: "unparsable timeout", cfg: Config{Render: RenderConfig{Timeout: "soon"}}, wantErr: ErrInvalidValue},
		{name: "negative timeout", cfg: Config{Render: RenderConfig{Timeout: "-1s"}}, wantErr: ErrInvalidValue},
		{name: "timeout over max", cfg: Config{Render: RenderConfig{Timeout: "11m"}}, wantErr: ErrInvalidValue},
		{name: "timeout at max", cfg: Config{Render: RenderConfig{Timeout: "10m"}}},
		{
			name:    "browser bin too long",
			cfg:     Config{Browser: BrowserConfig{Bin: strings.Repeat("a", MaxPathLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "quiet and verbose",
			cfg:     Config{Output: OutputConfig{Quiet: true, Verbose: true}},
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_TimeoutDuration(t *testing.T) {
	t.Parallel()

	cfg := Config{Render: RenderConfig{Timeout: "1m30s"}}
	if got := cfg.TimeoutDuration(); got != 90*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 90s", got)
	}
	cfg.Render.Timeout = "garbage"
	if got := cfg.TimeoutDuration(); got != 0 {
		t.Errorf("TimeoutDuration() on invalid = %v, want 0", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("", t.TempDir())
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("file path loads all sections", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeConfig(t, dir, "report.yaml", `render:
  engine: fpdf
  timeout: 45s
browser:
  bin: /usr/bin/chromium
  noSandbox: true
output:
  html: true
  verbose: true
`)

		cfg, err := LoadConfig(path, "")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Render.Engine != "fpdf" {
			t.Errorf("Render.Engine = %q", cfg.Render.Engine)
		}
		if cfg.TimeoutDuration() != 45*time.Second {
			t.Errorf("TimeoutDuration() = %v", cfg.TimeoutDuration())
		}
		if cfg.Browser.Bin != "/usr/bin/chromium" || !cfg.Browser.NoSandbox {
			t.Errorf("Browser = %+v", cfg.Browser)
		}
		if !cfg.Output.HTML || !cfg.Output.Verbose || cfg.Output.Quiet {
			t.Errorf("Output = %+v", cfg.Output)
		}
	})

	t.Run("relative path resolves against base dir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "conf"), 0o750); err != nil {
			t.Fatal(err)
		}
		writeConfig(t, filepath.Join(dir, "conf"), "mdreport.yaml", "render:\n  engine: chrome\n")

		cfg, err := LoadConfig(filepath.Join("conf", "mdreport.yaml"), dir)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Render.Engine != "chrome" {
			t.Errorf("Render.Engine = %q", cfg.Render.Engine)
		}
	})

	t.Run("name resolves .yml in base dir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeConfig(t, dir, "ci.yml", "browser:\n  noSandbox: true\n")

		cfg, err := LoadConfig("ci", dir)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.Browser.NoSandbox {
			t.Error("Browser.NoSandbox = false, want true")
		}
	})

	t.Run(".yaml wins over .yml", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeConfig(t, dir, "both.yaml", "render:\n  engine: fpdf\n")
		writeConfig(t, dir, "both.yml", "render:\n  engine: chrome\n")

		cfg, err := LoadConfig("both", dir)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Render.Engine != "fpdf" {
			t.Errorf("Render.Engine = %q, want fpdf", cfg.Render.Engine)
		}
	})

	t.Run("unknown name lists tried paths", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := LoadConfig("nope", dir)
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), filepath.Join(dir, "nope.yaml")) {
			t.Errorf("error %q should list the base dir candidate", err)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "render: [unclosed")
		_, err := LoadConfig(path, "")
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "unknown.yaml", "style: corporate\n")
		_, err := LoadConfig(path, "")
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("empty file returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "empty.yaml", "")
		_, err := LoadConfig(path, "")
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "engine.yaml", "render:\n  engine: latex\n")
		_, err := LoadConfig(path, "")
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
		if !strings.Contains(err.Error(), "engine.yaml") {
			t.Errorf("error %q should name the file", err)
		}
	})

	t.Run("unreadable file returns read error not ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}

		path := writeConfig(t, t.TempDir(), "locked.yaml", "render:\n  engine: fpdf\n")
		if err := os.Chmod(path, 0o000); err != nil {
			t.Fatalf("setup chmod: %v", err)
		}
		t.Cleanup(func() { _ = os.Chmod(path, 0o600) })

		_, err := LoadConfig(path, "")
		if err == nil {
			t.Fatal("expected error")
		}
		if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want a read error", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("team", "/work")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the two base dir candidates", paths)
	}
	if paths[0] != filepath.Join("/work", "team.yaml") || paths[1] != filepath.Join("/work", "team.yml") {
		t.Errorf("first candidates = %v", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, string(filepath.Separator)+AppDir+string(filepath.Separator)) {
			t.Errorf("user candidate %q not under %s", p, AppDir)
		}
	}
}
