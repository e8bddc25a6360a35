package core

import (
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
)

// NewLogger returns the logger diagnostics are reported to. By default only
// errors found in the input are shown; verbose adds every warning.
func NewLogger(w io.Writer, verbose, noColor bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
}
