package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/rulecraft/internal/logging"
)

var errInterrupted = errors.New("interrupted")

// NewLogger keeps the chat readable: only warnings and errors reach stderr
// unless debug is set.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// InterruptibleReader stops yielding input once done is closed, so a chat
// blocked on stdin ends on the next line after Ctrl+C.
type InterruptibleReader struct {
	base io.Reader
	done <-chan struct{}
}

// NewInterruptibleReader wraps base; done is usually ctx.Done().
func NewInterruptibleReader(base io.Reader, done <-chan struct{}) *InterruptibleReader {
	return &InterruptibleReader{base: base, done: done}
}

func (r *InterruptibleReader) Read(p []byte) (int, error) {
	if r.closed() {
		return 0, errInterrupted
	}
	n, err := r.base.Read(p)
	if r.closed() {
		return 0, errInterrupted
	}
	return n, err
}

func (r *InterruptibleReader) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// isInterrupted reports errors that end a chat quietly.
func isInterrupted(err error) bool {
	return errors.Is(err, errInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}
