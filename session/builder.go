package session

import (
	"time"

	"github.com/sarchlab/chesttrack/event"
	"github.com/sarchlab/chesttrack/integrity"
	"github.com/sarchlab/chesttrack/location"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/provider"
	"github.com/sarchlab/chesttrack/world"
)

// A Builder creates Sessions.
type Builder struct {
	client    world.Client
	storage   memory.Storage
	now       func() time.Time
	providers []provider.Provider
}

// MakeBuilder creates a builder that stores banks in memory and uses the
// system clock.
func MakeBuilder() Builder {
	return Builder{now: time.Now}
}

// WithClient sets the game client.
func (b Builder) WithClient(c world.Client) Builder {
	b.client = c
	return b
}

// WithStorage sets where banks are loaded from and saved to.
func (b Builder) WithStorage(s memory.Storage) Builder {
	b.storage = s
	return b
}

// WithClock sets the wall clock.
func (b Builder) WithClock(now func() time.Time) Builder {
	b.now = now
	return b
}

// WithProviders sets the providers, highest priority first. The default
// provider is always registered last.
func (b Builder) WithProviders(providers ...provider.Provider) Builder {
	b.providers = providers
	return b
}

// Build creates the session and subscribes its components to the session
// events. The scanner runs after the loaded-time tracker on each tick.
func (b Builder) Build() *Session {
	if b.client == nil {
		panic("a client is required")
	}

	storage := b.storage
	if storage == nil {
		storage = memory.NewInMemoryStorage()
	}

	s := &Session{
		WorldTick:          event.New[world.World](),
		PlayerDestroyBlock: event.New[world.BlockBreak](),
		client:             b.client,
		storage:            storage,
		now:                b.now,
		registry:           provider.NewRegistry(provider.NewDefaultProvider(b.client)),
		loader:             memory.NewLoader(),
		locations:          location.NewChain(),
	}

	for _, p := range b.providers {
		s.registry.Register(p)
	}

	s.locations.Register(event.PhaseFallback,
		location.NewContainerResolver(s.KeyAt).Resolve)

	ib := integrity.MakeBuilder().
		WithLoader(s.loader).
		WithResolver(s.locations).
		WithPlayerSource(b.client).
		WithKeyFunc(s.KeyFor).
		WithBlockKeyFunc(s.KeyAt).
		WithClock(b.now)
	s.scanner = ib.BuildScanner()
	s.listener = ib.BuildDestructionListener()
	s.tracker = memory.NewLoadedTimeTracker(s.loader)

	s.WorldTick.Register(s.tracker.Tick)
	s.WorldTick.Register(s.scanner.Tick)
	s.PlayerDestroyBlock.Register(s.listener.OnPlayerDestroyBlock)

	return s
}
