package timing

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/sarchlab/chesttrack/hooking"
)

// EventLogger is a hook that logs every event at trace level.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger returns an EventLogger that writes to logger.
func NewEventLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

type named interface {
	Name() string
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	e := h.logger.Trace().
		Int64("tick", evt.Time()).
		Str("event", reflect.TypeOf(evt).String())

	if n, ok := evt.Handler().(named); ok {
		e = e.Str("handler", n.Name())
	}

	e.Msg("event")
}
