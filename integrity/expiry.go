package integrity

import (
	"fmt"
	"time"

	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/world"
)

// Clocks are the three time bases a memory can be aged by.
type Clocks struct {
	Now        time.Time
	GameTime   int64
	LoadedTime int64
}

// Age returns how many whole seconds have passed since the memory was
// created, counted with the clock selected by mode. A timestamp that was never
// recorded holds its Unknown marker, which lies far in the past, so such a
// memory is very old.
func Age(
	mode memory.LifetimeCountMode,
	m memory.Memory,
	clocks Clocks,
) int64 {
	switch mode {
	case memory.RealTime:
		return int64(clocks.Now.Sub(m.RealTimestamp) / time.Second)
	case memory.WorldTime:
		return (clocks.GameTime - m.InGameTimestamp) / world.TicksPerSecond
	case memory.LoadedTime:
		return (clocks.LoadedTime - m.LoadedTimestamp) / world.TicksPerSecond
	default:
		panic(fmt.Sprintf("unknown lifetime count mode %d", int(mode)))
	}
}

// SecondsPastExpiry returns how far a memory is beyond its lifetime. ok is
// false when the memory cannot expire: it is exempt as a named memory or the
// lifetime is unlimited. A memory is expired when the returned value is above
// zero.
func SecondsPastExpiry(
	settings memory.IntegritySettings,
	m memory.Memory,
	clocks Clocks,
) (seconds int64, ok bool) {
	if settings.PreserveNamed && m.HasName() {
		return 0, false
	}

	lifetime, limited := settings.MemoryLifetime.Seconds()
	if !limited {
		return 0, false
	}

	return Age(settings.LifetimeCountMode, m, clocks) - lifetime, true
}
