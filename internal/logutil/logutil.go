// Package logutil configures the slog logger used by the kernels CLI and tests.
package logutil

import (
	"io"
	"log/slog"
	"path/filepath"
)

// LevelTrace is more verbose than debug; kernels log per-call dispatch at this level.
const LevelTrace slog.Level = -8

// NewLogger returns a text logger writing to w at the given level.
// Source locations are shortened to the file name.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if l, ok := attr.Value.Any().(slog.Level); ok && l == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok {
					src.File = filepath.Base(src.File)
				}
			}
			return attr
		},
	}))
}
