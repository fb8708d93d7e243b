// Package timing is a discrete event engine that counts time in game ticks.
// The replay host and the monitor drive the integrity components with it.
package timing

import "github.com/sarchlab/chesttrack/hooking"

// GameTime is a point in time, in ticks since the world was created.
type GameTime = int64

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() GameTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// An Engine keeps the simulation running.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run processes events until there are none left.
	Run() error

	// Pause stops the engine from processing more events until Continue is
	// called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}
