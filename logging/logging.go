// Package logging configures zerolog and turns hook invocations into log
// lines.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sarchlab/chesttrack/hooking"
)

// Log formats accepted by Setup.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Setup sets the global log level and points the global logger at out, as
// human readable console output or as JSON lines.
func Setup(level, format string, out io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(lvl)

	switch strings.ToLower(format) {
	case FormatConsole, "":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	case FormatJSON:
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	return nil
}

// A Hook logs every invocation whose detail can marshal itself into a log
// event. Other invocations are ignored.
type Hook struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// NewHook creates a hook that logs to logger at debug level.
func NewHook(logger zerolog.Logger) *Hook {
	return &Hook{logger: logger, level: zerolog.DebugLevel}
}

// WithLevel returns a copy of the hook that logs at lvl.
func (h *Hook) WithLevel(lvl zerolog.Level) *Hook {
	c := *h
	c.level = lvl

	return &c
}

// Func implements hooking.Hook.
func (h *Hook) Func(ctx hooking.HookCtx) {
	detail, ok := ctx.Detail.(zerolog.LogObjectMarshaler)
	if !ok {
		return
	}

	h.logger.WithLevel(h.level).
		EmbedObject(detail).
		Msg(ctx.Pos.Name)
}
