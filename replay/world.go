package replay

import "github.com/sarchlab/chesttrack/world"

// SimWorld is a world made of the blocks a scenario places. Every other
// position is air.
type SimWorld struct {
	key      world.Key
	time     int64
	blocks   map[world.BlockPos]world.BlockState
	unloaded map[world.BlockPos]bool
}

// NewSimWorld creates an empty world.
func NewSimWorld(key world.Key, time int64) *SimWorld {
	return &SimWorld{
		key:      key,
		time:     time,
		blocks:   make(map[world.BlockPos]world.BlockState),
		unloaded: make(map[world.BlockPos]bool),
	}
}

// Key returns the dimension of the world.
func (w *SimWorld) Key() world.Key {
	return w.key
}

// SetKey moves the world to another dimension.
func (w *SimWorld) SetKey(key world.Key) {
	w.key = key
}

// GameTime returns the current tick.
func (w *SimWorld) GameTime() int64 {
	return w.time
}

// SetGameTime sets the current tick.
func (w *SimWorld) SetGameTime(t int64) {
	w.time = t
}

// IsLoaded is false only for the positions marked unloaded.
func (w *SimWorld) IsLoaded(pos world.BlockPos) bool {
	return !w.unloaded[pos]
}

// SetLoaded marks a position as loaded or not.
func (w *SimWorld) SetLoaded(pos world.BlockPos, loaded bool) {
	if loaded {
		delete(w.unloaded, pos)
		return
	}

	w.unloaded[pos] = true
}

// BlockState returns the block at pos.
func (w *SimWorld) BlockState(pos world.BlockPos) world.BlockState {
	if s, ok := w.blocks[pos]; ok {
		return s
	}

	return world.Air
}

// SetBlock places a block. Placing air clears the position.
func (w *SimWorld) SetBlock(pos world.BlockPos, s world.BlockState) {
	if s.IsAir() {
		delete(w.blocks, pos)
		return
	}

	w.blocks[pos] = s
}

// SimPlayer is the local player.
type SimPlayer struct {
	pos world.BlockPos
}

// BlockPosition returns where the player stands.
func (p *SimPlayer) BlockPosition() world.BlockPos {
	return p.pos
}

// MoveTo teleports the player.
func (p *SimPlayer) MoveTo(pos world.BlockPos) {
	p.pos = pos
}

// SimClient holds the simulated player and world. The player is absent if
// the scenario does not place one.
type SimClient struct {
	player *SimPlayer
	level  *SimWorld
}

// Player returns the local player.
func (c *SimClient) Player() (world.Player, bool) {
	if c.player == nil {
		return nil, false
	}

	return c.player, true
}

// Level returns the world the player is in.
func (c *SimClient) Level() (world.World, bool) {
	if c.level == nil {
		return nil, false
	}

	return c.level, true
}
