package provider

import "github.com/sarchlab/chesttrack/world"

// DefaultProvider applies everywhere. It stores memories under the dimension
// of the world the player is in, in one bank per save, server or realm.
type DefaultProvider struct {
	client world.Client
}

// NewDefaultProvider creates a DefaultProvider that reads the player's world
// from client.
func NewDefaultProvider(client world.Client) *DefaultProvider {
	return &DefaultProvider{client: client}
}

// Name returns "default".
func (p *DefaultProvider) Name() string {
	return "default"
}

// Applies always returns true.
func (p *DefaultProvider) Applies(world.Coordinate) bool {
	return true
}

// PlayersCurrentKey returns the dimension key of the player's world.
func (p *DefaultProvider) PlayersCurrentKey() (world.Key, bool) {
	level, ok := p.client.Level()
	if !ok {
		return world.Key{}, false
	}

	return level.Key(), true
}

// MemoryBankID derives the bank from the coordinate.
func (p *DefaultProvider) MemoryBankID(coord world.Coordinate) string {
	return coord.SafeID()
}
