package node

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Loggers holds the root logger and the per-component children derived from it.
type Loggers struct {
	Root   zerolog.Logger
	Store  zerolog.Logger
	Verify zerolog.Logger
	CLI    zerolog.Logger
}

type LogOptions struct {
	Level  string
	Format string
	Out    io.Writer
}

func ParseLogLevel(level string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
}

func InitLogging(opts LogOptions) (Loggers, error) {
	lvl, err := ParseLogLevel(opts.Level)
	if err != nil {
		return Loggers{}, fmt.Errorf("log level: %w", err)
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	var w io.Writer
	switch opts.Format {
	case LogFormatConsole, "":
		w = newConsoleWriter(out)
	case LogFormatJSON:
		w = out
	default:
		return Loggers{}, fmt.Errorf("unknown log format %q", opts.Format)
	}
	root := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return Loggers{
		Root:   root,
		Store:  root.With().Str("component", "store").Logger(),
		Verify: root.With().Str("component", "verify").Logger(),
		CLI:    root.With().Str("component", "cli").Logger(),
	}, nil
}

// NopLoggers discards everything.
func NopLoggers() Loggers {
	nop := zerolog.Nop()
	return Loggers{Root: nop, Store: nop, Verify: nop, CLI: nop}
}

func newConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	cw.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	cw.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s=", i)
	}
	return cw
}
