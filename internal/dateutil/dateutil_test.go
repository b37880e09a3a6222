package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "YYYY converts to Go year", format: "YYYY", want: "2006"},
		{name: "MM converts to padded month", format: "MM", want: "01"},
		{name: "DD converts to padded day", format: "DD", want: "02"},
		{name: "HH converts to 24h hour", format: "HH", want: "15"},
		{name: "mm converts to minute", format: "mm", want: "04"},
		{name: "ss converts to second", format: "ss", want: "05"},
		{name: "stamp layout", format: StampLayout, want: "02/01/2006 15:04"},
		{name: "long layout", format: LongLayout, want: "02/01/2006 at 15:04:05"},
		{name: "month and minute are distinct", format: "MM-mm", want: "01-04"},
		{name: "single letters stay literal", format: "Date: YYYY", want: "Date: 2006"},
		{name: "brackets preserve literal text", format: "[Date]: YYYY", want: "Date: 2006"},
		{name: "brackets preserve tokens", format: "[YYYY]-MM", want: "YYYY-01"},
		{name: "empty brackets are valid", format: "YYYY[]MM", want: "200601"},
		{name: "unclosed bracket", format: "[Date YYYY", wantErr: ErrInvalidDateFormat},
		{name: "empty format", format: "", wantErr: ErrInvalidDateFormat},
		{
			name:    "format exceeding max length",
			format:  string(make([]byte, MaxDateFormatLength+1)),
			wantErr: ErrInvalidDateFormat,
		},
		{name: "only literals", format: "---", want: "---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDateFormat(tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseDateFormat(%q) error = %v, want %v", tt.format, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDateFormat(%q) unexpected error: %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("ParseDateFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)

	tests := []struct {
		name    string
		layout  string
		want    string
		wantErr bool
	}{
		{name: "stamp layout", layout: StampLayout, want: "07/03/2025 09:05"},
		{name: "long layout", layout: LongLayout, want: "07/03/2025 at 09:05:03"},
		{name: "raw layout", layout: "YYYY/MM/DD HH:mm", want: "2025/03/07 09:05"},
		{name: "invalid layout", layout: "[oops", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Format(fixed, tt.layout)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Errorf("Format(%q) error = %v, want ErrInvalidDateFormat", tt.layout, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Format(%q) unexpected error: %v", tt.layout, err)
			}
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestMustFormat_PanicsOnInvalidLayout(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid layout")
		}
	}()
	MustFormat(time.Now(), "[unclosed")
}
