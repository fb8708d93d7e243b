package memory

import "github.com/sarchlab/chesttrack/world"

// A LoadedTimeTracker advances the loaded-time counter of the active bank
// once per world tick.
type LoadedTimeTracker struct {
	loader *Loader
}

// NewLoadedTimeTracker creates a tracker for the bank held by a loader.
func NewLoadedTimeTracker(loader *Loader) *LoadedTimeTracker {
	return &LoadedTimeTracker{loader: loader}
}

// Tick counts one loaded tick.
func (t *LoadedTimeTracker) Tick(_ world.World) {
	bank, ok := t.loader.Active()
	if !ok {
		return
	}

	bank.Metadata().IncrementLoadedTime()
}
