// Package dateutil formats timestamps from user-friendly layout strings.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// Layouts used by the report header and footer.
const (
	StampLayout = "DD/MM/YYYY HH:mm"
	LongLayout  = "DD/MM/YYYY [at] HH:mm:ss"
)

// dateTokens maps layout tokens to Go time format components.
// Ordered by length descending for greedy matching. Tokens are case-sensitive:
// MM is the month, mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// ParseDateFormat converts a layout string to Go's time format.
// Tokens: YYYY, MM, DD, HH, mm, ss.
// Text inside brackets is copied literally: "[at]" stays "at".
// Other characters are preserved as literals.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Format renders t using a layout string.
func Format(t time.Time, layout string) (string, error) {
	goFmt, err := ParseDateFormat(layout)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}

// MustFormat is Format for layouts known at compile time.
// Panics on an invalid layout (programmer error).
func MustFormat(t time.Time, layout string) string {
	s, err := Format(t, layout)
	if err != nil {
		panic(fmt.Sprintf("dateutil: %v", err))
	}
	return s
}
