package rulecraft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", MaxInputSize - 1, false},
		{"Exact Limit", MaxInputSize, false},
		{"Over Limit", MaxInputSize + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sanitizeInput(strings.Repeat("a", tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name, input, expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r", "Line1\nLine2\tTabbed\r"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Wide Runes", "新加坡\x00节点", "新加坡节点"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := sanitizeInput("bad\xff")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
