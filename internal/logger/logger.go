// Package logger builds the process slog logger: colored single-line output
// on terminals and during development, JSON everywhere else.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// Output formats accepted in Config.Format.
const (
	FormatAuto   = "auto"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Logger is the application logger. It embeds *slog.Logger so callers use
// the usual Info/Warn/Error methods.
type Logger struct {
	*slog.Logger
}

// Config selects level, format and destination.
type Config struct {
	Writer      io.Writer // defaults to stdout
	Format      string
	Environment string
	Level       slog.Level
	AddSource   bool
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: shortSource,
	}

	var h slog.Handler
	if pickFormat(cfg.Format, cfg.Environment, w) == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = NewPrettyHandler(w, opts)
	}
	return &Logger{Logger: slog.New(h)}
}

// For returns a child logger tagged with a component name.
func (l *Logger) For(component string) *slog.Logger {
	return l.With(slog.String("component", component))
}

// shortSource trims source file paths to their base name.
func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok {
		src.File = filepath.Base(src.File)
	}
	return a
}

// pickFormat resolves "auto". Production is always JSON. Otherwise a file
// that is not a terminal gets JSON and anything else, a terminal or an
// in-memory buffer, gets the pretty format.
func pickFormat(format, env string, w io.Writer) string {
	switch f := strings.ToLower(format); f {
	case FormatJSON, FormatPretty:
		return f
	}
	if env == "production" {
		return FormatJSON
	}
	if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return FormatJSON
	}
	return FormatPretty
}

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	var lvl slog.Level
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
