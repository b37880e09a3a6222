package yamlutil_test

// Notes:
// - Marshal error branch: goccy/go-yaml only fails on unencodable types
//   (channels, funcs) which no caller passes.
// - DecodeFile read errors other than "not exist" are platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdreport/internal/yamlutil"
)

type renderSection struct {
	Engine  string `yaml:"engine"`
	Timeout string `yaml:"timeout"`
}

type testConfig struct {
	Render renderSection `yaml:"render"`
	Quiet  bool          `yaml:"quiet"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Strict decoding
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		dest     any
		wantErr  error
		wantText string
		check    func(t *testing.T, v any)
	}{
		{
			name: "nested known fields",
			data: []byte("render:\n  engine: fpdf\n  timeout: 45s\nquiet: true\n"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Render.Engine != "fpdf" {
					t.Errorf("Render.Engine = %q, want %q", cfg.Render.Engine, "fpdf")
				}
				if cfg.Render.Timeout != "45s" {
					t.Errorf("Render.Timeout = %q, want %q", cfg.Render.Timeout, "45s")
				}
				if !cfg.Quiet {
					t.Error("Quiet = false, want true")
				}
			},
		},
		{
			name: "unicode values",
			data: []byte("render:\n  engine: relatório\n"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				if got := v.(*testConfig).Render.Engine; got != "relatório" {
					t.Errorf("Render.Engine = %q", got)
				}
			},
		},
		{
			name:     "unknown nested field",
			data:     []byte("render:\n  engine: chrome\n  dpi: 300\n"),
			dest:     &testConfig{},
			wantText: "yamlutil:",
		},
		{
			name:     "syntax error",
			data:     []byte("render: [unclosed"),
			dest:     &testConfig{},
			wantText: "yamlutil:",
		},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("quiet: true"), dest: nil, wantErr: yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantText != "":
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantText) {
					t.Fatalf("error = %v, want prefix %q", err, tt.wantText)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDecodeFile - File decoding
// ---------------------------------------------------------------------------

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	t.Run("reads and decodes", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "mdreport.yaml")
		if err := os.WriteFile(path, []byte("render:\n  engine: chrome\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		var cfg testConfig
		if err := yamlutil.DecodeFile(path, &cfg); err != nil {
			t.Fatalf("DecodeFile() error = %v", err)
		}
		if cfg.Render.Engine != "chrome" {
			t.Errorf("Render.Engine = %q, want chrome", cfg.Render.Engine)
		}
	})

	t.Run("missing file keeps os error", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.DecodeFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.yaml")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		var cfg testConfig
		if err := yamlutil.DecodeFile(path, &cfg); !errors.Is(err, yamlutil.ErrNilData) {
			t.Errorf("error = %v, want ErrNilData", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMarshal - Encoding
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	data, err := yamlutil.Marshal(&testConfig{Render: renderSection{Engine: "fpdf", Timeout: "30s"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(data)
	for _, want := range []string{"render:", "engine: fpdf", "timeout: 30s", "quiet: false"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q, got:\n%s", want, s)
		}
	}

	var decoded testConfig
	if err := yamlutil.UnmarshalStrict(data, &decoded); err != nil {
		t.Fatalf("decoding marshaled output: %v", err)
	}
	if decoded.Render.Engine != "fpdf" {
		t.Errorf("decoded engine = %q", decoded.Render.Engine)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - MaxInputSize enforcement
// ---------------------------------------------------------------------------

// Modifies the package-level MaxInputSize, so it does not run in parallel.
func TestInputSizeLimit(t *testing.T) {
	original := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = original })

	t.Run("input at limit succeeds", func(t *testing.T) {
		yamlutil.MaxInputSize = 100
		data := []byte("quiet: true" + strings.Repeat(" ", 89))
		var cfg testConfig
		if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("input over limit reports sizes", func(t *testing.T) {
		yamlutil.MaxInputSize = 50
		data := make([]byte, 100)
		var cfg testConfig
		err := yamlutil.UnmarshalStrict(data, &cfg)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Fatalf("error = %v, want ErrInputTooLarge", err)
		}
		if !strings.Contains(err.Error(), "100 bytes") || !strings.Contains(err.Error(), "max 50") {
			t.Errorf("error should carry sizes, got: %v", err)
		}
	})

	t.Run("DecodeFile stops at the cap", func(t *testing.T) {
		yamlutil.MaxInputSize = 50
		path := filepath.Join(t.TempDir(), "big.yaml")
		if err := os.WriteFile(path, []byte(strings.Repeat("#", 10_000)), 0o644); err != nil {
			t.Fatal(err)
		}
		var cfg testConfig
		err := yamlutil.DecodeFile(path, &cfg)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Fatalf("error = %v, want ErrInputTooLarge", err)
		}
		if !strings.Contains(err.Error(), "51 bytes") {
			t.Errorf("expected a truncated read of 51 bytes, got: %v", err)
		}
	})
}
