// Package logging builds the structured logger used by the functions.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// New returns a colourised text logger on a terminal, and a JSON logger
// otherwise (CloudWatch).
func New(level slog.Level) *slog.Logger {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{Level: level}))
	}
	return NewJSON(os.Stdout, level)
}

// NewJSON returns a JSON logger writing to w
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
