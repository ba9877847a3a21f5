package raster

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal, the way
// main.rs assumes an interactive terminal via
// crossterm::terminal::enable_raw_mode. Non-*os.File writers (e.g. a
// bytes.Buffer in tests, or a piped stdout) are treated as non-terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteFrame writes either the full raster grid or a single-line summary
// to w, depending on whether w is a terminal. This is the fallback
// spec.md's terminal raster renderer needs when stdout is piped or
// redirected, which the original TUI never had to consider.
func WriteFrame(w io.Writer, b *Buffer) error {
	if IsTerminal(w) {
		_, err := io.WriteString(w, b.Render())
		return err
	}
	_, err := io.WriteString(w, b.RenderLine()+"\n")
	return err
}
