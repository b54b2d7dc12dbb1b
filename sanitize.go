package rulecraft

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputSize bounds one chat message in bytes.
const MaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// sanitizeInput rejects oversized or non-UTF-8 text and strips control
// characters other than newline, tab and carriage return.
func sanitizeInput(input string) (string, error) {
	if len(input) > MaxInputSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), MaxInputSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
