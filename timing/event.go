package timing

import (
	"github.com/rs/xid"

	"github.com/sarchlab/chesttrack/hooking"
)

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the tick at which the event happens.
	Time() GameTime

	// Handler returns the handler that handles the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are handled after all the primary events of the same tick.
	IsSecondary() bool
}

// HookPosBeforeEvent is a hook position that triggers before handling an event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID        string
	time      GameTime
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase.
func NewEventBase(t GameTime, handler Handler) *EventBase {
	return &EventBase{
		ID:      xid.New().String(),
		time:    t,
		handler: handler,
	}
}

// Time returns the tick at which the event happens.
func (e EventBase) Time() GameTime {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
