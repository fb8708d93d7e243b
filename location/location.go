// Package location turns an observed block into the place its memory is
// stored under: a region key and the position that owns the contents.
package location

import (
	"github.com/sarchlab/chesttrack/event"
	"github.com/sarchlab/chesttrack/world"
)

// A Location is where a memory lives inside a bank.
type Location struct {
	Key world.Key
	Pos world.BlockPos
}

// A BlockSource is a block observed in a world.
type BlockSource interface {
	World() world.World
	Pos() world.BlockPos
	State() world.BlockState
}

// A Resolver finds the location a block's contents should be stored under.
type Resolver interface {
	FromBlock(player world.Player, source BlockSource) (Location, bool)
}

// CachedBlockSource reads the block state once and reuses it.
type CachedBlockSource struct {
	world world.World
	pos   world.BlockPos

	state  world.BlockState
	cached bool
}

// NewCachedBlockSource creates a block source for a position.
func NewCachedBlockSource(w world.World, pos world.BlockPos) *CachedBlockSource {
	return &CachedBlockSource{world: w, pos: pos}
}

// World returns the world the block is in.
func (s *CachedBlockSource) World() world.World {
	return s.world
}

// Pos returns the position of the block.
func (s *CachedBlockSource) Pos() world.BlockPos {
	return s.pos
}

// State returns the block state, reading it from the world the first time.
func (s *CachedBlockSource) State() world.BlockState {
	if !s.cached {
		s.state = s.world.BlockState(s.pos)
		s.cached = true
	}

	return s.state
}

// Query is the argument of the callbacks of a Chain.
type Query struct {
	Player world.Player
	Source BlockSource
}

// A Chain is a Resolver made of phased callbacks. Plugins register in the
// priority or default phase; the container resolver sits in the fallback
// phase.
type Chain struct {
	*event.PhasedEvent[Query, Location]
}

// NewChain creates a chain with no callbacks.
func NewChain() *Chain {
	return &Chain{PhasedEvent: event.NewPhased[Query, Location]()}
}

// FromBlock asks the callbacks in order.
func (c *Chain) FromBlock(
	player world.Player,
	source BlockSource,
) (Location, bool) {
	return c.Invoke(Query{Player: player, Source: source}).Get()
}

// A KeyFunc returns the region key memories in a world are stored under.
type KeyFunc func(w world.World) world.Key

// WorldKey is the KeyFunc that uses the dimension of the world.
func WorldKey(w world.World) world.Key {
	return w.Key()
}

// A BlockKeyFunc returns the region key of the memory at pos.
type BlockKeyFunc func(w world.World, pos world.BlockPos) world.Key

// WorldBlockKey is the BlockKeyFunc that uses the dimension of the world.
func WorldBlockKey(w world.World, _ world.BlockPos) world.Key {
	return w.Key()
}

// AtBlock ignores the position.
func (f KeyFunc) AtBlock() BlockKeyFunc {
	return func(w world.World, _ world.BlockPos) world.Key {
		return f(w)
	}
}

// ContainerResolver resolves container blocks to their own position, or to
// the root position for secondary parts of multi-block containers.
type ContainerResolver struct {
	keyAt BlockKeyFunc
}

// NewContainerResolver creates a resolver that stores under the key keyAt
// gives the resolved position.
func NewContainerResolver(keyAt BlockKeyFunc) *ContainerResolver {
	if keyAt == nil {
		keyAt = WorldBlockKey
	}

	return &ContainerResolver{keyAt: keyAt}
}

// Resolve is the phased callback form of FromBlock.
func (r *ContainerResolver) Resolve(q Query) event.Result[Location] {
	loc, ok := r.FromBlock(q.Player, q.Source)
	if !ok {
		return event.Empty[Location]()
	}

	return event.Value(loc)
}

// FromBlock implements Resolver.
func (r *ContainerResolver) FromBlock(
	_ world.Player,
	source BlockSource,
) (Location, bool) {
	state := source.State()
	if !state.Container {
		return Location{}, false
	}

	pos := source.Pos()
	if state.Root != nil {
		pos = *state.Root
	}

	return Location{Key: r.keyAt(source.World(), pos), Pos: pos}, true
}
