package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the rulecraft banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"             _                      __ _   ", "#34d399"},
		{"  _ __ _   _| | ___  ___ _ __ __ _ / _| |_ ", "#2dd4bf"},
		{" | '__| | | | |/ _ \\/ __| '__/ _` | |_| __|", "#22d3ee"},
		{" | |  | |_| | |  __/ (__| | | (_| |  _| |_ ", "#38bdf8"},
		{" |_|   \\__,_|_|\\___|\\___|_|  \\__,_|_|  \\__|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" "+version).Faint())
	fmt.Fprintln(w)
}
