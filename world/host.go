package world

// A BlockState describes the block occupying a position.
type BlockState struct {
	ID string

	// Container is true when the block stores items.
	Container bool

	// Root is set on the secondary parts of multi-block containers, such as
	// the second half of a double chest, and points to the part that owns
	// the contents.
	Root *BlockPos
}

// Air is the empty block.
var Air = BlockState{ID: "minecraft:air"}

// IsAir reports whether the state is empty.
func (s BlockState) IsAir() bool {
	return s.ID == "" || s.ID == Air.ID
}

// A World is a loaded level of the game.
type World interface {
	// Key returns the dimension key of the world.
	Key() Key

	// GameTime returns the number of ticks simulated in this world.
	GameTime() int64

	// IsLoaded tells if the chunk holding the position is loaded.
	IsLoaded(pos BlockPos) bool

	// BlockState returns the block at a position.
	BlockState(pos BlockPos) BlockState
}

// A Player is the local player entity.
type Player interface {
	BlockPosition() BlockPos
}

// A Client exposes the local player and the world they are in. Either may be
// absent, for example on the title screen.
type Client interface {
	Player() (Player, bool)
	Level() (World, bool)
}

// BlockBreak is delivered when the local player destroys a block.
type BlockBreak struct {
	World World
	Pos   BlockPos
	State BlockState
}
