// Package session connects the memory integrity components to a game client.
// A Session lives as long as the client does; Join and Leave bracket the time
// spent in one save, server or realm.
package session

import (
	"fmt"
	"time"

	"github.com/sarchlab/chesttrack/event"
	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/integrity"
	"github.com/sarchlab/chesttrack/location"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/provider"
	"github.com/sarchlab/chesttrack/world"
)

// A Session owns the active bank and provider and the components that keep
// the bank consistent with the world.
type Session struct {
	// WorldTick must be fired by the host at the end of every world tick.
	WorldTick *event.Event[world.World]

	// PlayerDestroyBlock must be fired by the host when the local player
	// breaks a block.
	PlayerDestroyBlock *event.Event[world.BlockBreak]

	client    world.Client
	storage   memory.Storage
	now       func() time.Time
	registry  *provider.Registry
	loader    *memory.Loader
	locations *location.Chain
	scanner   *integrity.Scanner
	listener  *integrity.DestructionListener
	tracker   *memory.LoadedTimeTracker

	coord  world.Coordinate
	joined bool
}

// AcceptHook registers a hook with every hookable component of the session.
func (s *Session) AcceptHook(h hooking.Hook) {
	for _, c := range s.Hookables() {
		c.AcceptHook(h)
	}
}

// Hookables returns the components that report through hooks.
func (s *Session) Hookables() []hooking.Hookable {
	return []hooking.Hookable{s.registry, s.scanner, s.listener}
}

// Join enters a coordinate. The provider that applies to it is activated and
// its bank is loaded from storage, or created if it does not exist yet. A
// session that is already in a coordinate leaves it first.
func (s *Session) Join(coord world.Coordinate) error {
	if s.joined {
		if err := s.Leave(); err != nil {
			return err
		}
	}

	p := s.registry.Resolve(coord)
	id := p.MemoryBankID(coord)

	bank, found, err := s.storage.Load(id)
	if err != nil {
		s.registry.Unload()
		return fmt.Errorf("joining %s: loading bank %s: %w", coord, id, err)
	}

	if !found {
		bank = memory.NewBank(id, nil)
	}

	s.loader.Load(bank)
	s.coord = coord
	s.joined = true

	return nil
}

// Leave saves the active bank and unloads it together with the provider.
// Leaving without having joined does nothing.
func (s *Session) Leave() error {
	if !s.joined {
		return nil
	}

	bank, ok := s.loader.Active()

	s.loader.Unload()
	s.registry.Unload()
	s.joined = false

	if ok {
		if err := s.storage.Save(bank); err != nil {
			return fmt.Errorf("leaving %s: saving bank %s: %w",
				s.coord, bank.ID(), err)
		}
	}

	return nil
}

// Coordinate returns the coordinate the session is in.
func (s *Session) Coordinate() (world.Coordinate, bool) {
	return s.coord, s.joined
}

// KeyFor returns the key memories in w are stored under: the key of the
// active provider, or the dimension of w if the provider has none.
func (s *Session) KeyFor(w world.World) world.Key {
	if key, ok := s.registry.CurrentKey(); ok {
		return key
	}

	return w.Key()
}

// KeyAt returns the key the memory at pos is stored under. Providers that
// split the world into areas key the block by its own area.
func (s *Session) KeyAt(w world.World, pos world.BlockPos) world.Key {
	if key, ok := s.registry.KeyAt(pos); ok {
		return key
	}

	return w.Key()
}

// CurrentKey returns the key of the active provider.
func (s *Session) CurrentKey() (world.Key, bool) {
	return s.registry.CurrentKey()
}

// Remember stores the contents of the container at pos in the active bank,
// stamped with the current clocks. It returns the location the memory was
// stored at. Nothing is stored if there is no active bank or the block does
// not resolve to a location.
func (s *Session) Remember(
	w world.World,
	pos world.BlockPos,
	name string,
	items []memory.ItemStack,
) (location.Location, bool) {
	bank, ok := s.loader.Active()
	if !ok {
		return location.Location{}, false
	}

	player, _ := s.client.Player()

	loc, ok := s.locations.FromBlock(player, location.NewCachedBlockSource(w, pos))
	if !ok {
		return location.Location{}, false
	}

	bank.AddMemory(loc.Key, loc.Pos, memory.Memory{
		Name:            name,
		Items:           items,
		RealTimestamp:   s.now(),
		InGameTimestamp: w.GameTime(),
		LoadedTimestamp: bank.Metadata().LoadedTime(),
	})

	return loc, true
}

// Registry returns the provider registry.
func (s *Session) Registry() *provider.Registry {
	return s.registry
}

// Loader returns the loader that holds the active bank.
func (s *Session) Loader() *memory.Loader {
	return s.loader
}

// Locations returns the resolver chain. Plugins may register callbacks in the
// priority and default phases.
func (s *Session) Locations() *location.Chain {
	return s.locations
}

// Scanner returns the integrity scanner.
func (s *Session) Scanner() *integrity.Scanner {
	return s.scanner
}
