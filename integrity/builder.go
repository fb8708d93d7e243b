package integrity

import (
	"time"

	"github.com/sarchlab/chesttrack/location"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/world"
)

type noPlayer struct{}

func (noPlayer) Player() (world.Player, bool) {
	return nil, false
}

// A Builder creates Scanners and DestructionListeners.
type Builder struct {
	loader   *memory.Loader
	resolver location.Resolver
	players  PlayerSource
	keyOf    location.KeyFunc
	keyAt    location.BlockKeyFunc
	now      func() time.Time
}

// MakeBuilder creates a builder with default collaborators: memories are keyed
// by the world's dimension, resolved with a ContainerResolver, aged with the
// system clock, and there is no player.
func MakeBuilder() Builder {
	return Builder{
		players: noPlayer{},
		keyOf:   location.WorldKey,
		now:     time.Now,
	}
}

// WithLoader sets the loader that holds the active bank.
func (b Builder) WithLoader(l *memory.Loader) Builder {
	b.loader = l
	return b
}

// WithResolver sets the resolver used by the periodic check.
func (b Builder) WithResolver(r location.Resolver) Builder {
	b.resolver = r
	return b
}

// WithPlayerSource sets where the local player comes from.
func (b Builder) WithPlayerSource(p PlayerSource) Builder {
	b.players = p
	return b
}

// WithKeyFunc sets how a world maps to a region key.
func (b Builder) WithKeyFunc(f location.KeyFunc) Builder {
	b.keyOf = f
	return b
}

// WithBlockKeyFunc sets how a block maps to a region key. By default a block
// has the key of the world it is in.
func (b Builder) WithBlockKeyFunc(f location.BlockKeyFunc) Builder {
	b.keyAt = f
	return b
}

// WithClock sets the wall clock used for real-time expiry.
func (b Builder) WithClock(now func() time.Time) Builder {
	b.now = now
	return b
}

func (b Builder) mustHaveLoader() {
	if b.loader == nil {
		panic("a loader is required")
	}
}

// BuildScanner creates a Scanner.
func (b Builder) BuildScanner() *Scanner {
	b.mustHaveLoader()

	resolver := b.resolver
	if resolver == nil {
		resolver = location.NewContainerResolver(b.blockKeyFunc())
	}

	return &Scanner{
		loader:           b.loader,
		resolver:         resolver,
		players:          b.players,
		keyOf:            b.keyOf,
		now:              b.now,
		lastCompleteTick: -1,
		generation:       b.loader.Generation(),
	}
}

// BuildDestructionListener creates a DestructionListener.
func (b Builder) BuildDestructionListener() *DestructionListener {
	b.mustHaveLoader()

	return &DestructionListener{
		loader: b.loader,
		keyAt:  b.blockKeyFunc(),
	}
}

func (b Builder) blockKeyFunc() location.BlockKeyFunc {
	if b.keyAt != nil {
		return b.keyAt
	}

	return b.keyOf.AtBlock()
}
