package timing

import (
	"sync"

	"github.com/rs/xid"
)

// TickEvent asks a component to update its state.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a new TickEvent.
func MakeTickEvent(handler Handler, time GameTime) TickEvent {
	evt := TickEvent{}
	evt.ID = xid.New().String()
	evt.handler = handler
	evt.time = time

	return evt
}

// A Ticker is an object that updates states with ticks. Tick returns false
// when there is nothing more to do.
type Ticker interface {
	Tick() bool
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	lock      sync.Mutex
	handler   Handler
	Engine    Engine
	secondary bool

	nextTickTime GameTime
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(handler Handler, engine Engine) *TickScheduler {
	return &TickScheduler{
		handler:      handler,
		Engine:       engine,
		nextTickTime: -1,
	}
}

// NewSecondaryTickScheduler creates a scheduler that always schedules
// secondary tick events.
func NewSecondaryTickScheduler(handler Handler, engine Engine) *TickScheduler {
	t := NewTickScheduler(handler, engine)
	t.secondary = true

	return t
}

// TickNow schedules a tick at the current tick.
func (t *TickScheduler) TickNow() {
	t.schedule(t.Now())
}

// TickLater schedules a tick at the tick after the current one.
func (t *TickScheduler) TickLater() {
	t.schedule(t.Now() + 1)
}

func (t *TickScheduler) schedule(time GameTime) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time
	tick := MakeTickEvent(t.handler, time)
	tick.secondary = t.secondary

	t.Engine.Schedule(tick)
}

// Now returns the current time of the engine.
func (t *TickScheduler) Now() GameTime {
	return t.Engine.Now()
}

// TickingComponent is a component that updates its state once per tick. It
// keeps ticking for as long as its Ticker makes progress.
type TickingComponent struct {
	*TickScheduler

	name   string
	ticker Ticker
}

// NewTickingComponent creates a new ticking component.
func NewTickingComponent(
	name string,
	engine Engine,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{name: name, ticker: ticker}
	tc.TickScheduler = NewTickScheduler(tc, engine)

	return tc
}

// NewSecondaryTickingComponent creates a ticking component that ticks after
// the primary events of each tick.
func NewSecondaryTickingComponent(
	name string,
	engine Engine,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{name: name, ticker: ticker}
	tc.TickScheduler = NewSecondaryTickScheduler(tc, engine)

	return tc
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Handle triggers the tick function of the ticker.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}
