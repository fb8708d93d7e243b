// Package provider decides, for the save or server the player is on, which
// plugin translates the player's position into the region key memories are
// stored under.
package provider

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/world"
)

// A Provider maps a player to a region key for the coordinates it applies
// to.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// Applies tells if the provider handles the given coordinate.
	Applies(coord world.Coordinate) bool

	// PlayersCurrentKey returns the key of the region the player is in.
	PlayersCurrentKey() (world.Key, bool)

	// MemoryBankID returns the bank that stores memories for a coordinate.
	MemoryBankID(coord world.Coordinate) string
}

// A BlockKeyer is a Provider whose regions are areas of the world, so that a
// block belongs to a region regardless of where the player stands.
type BlockKeyer interface {
	KeyAt(pos world.BlockPos) world.Key
}

// HookPosProviderSelected is invoked with a Selection after each Resolve.
var HookPosProviderSelected = &hooking.HookPos{Name: "ProviderSelected"}

// Selection describes the outcome of a Resolve.
type Selection struct {
	Coordinate world.Coordinate
	Provider   string
	Fallback   bool
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Selection) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("coordinate", s.Coordinate).
		Str("provider", s.Provider).
		Bool("fallback", s.Fallback)
}

// A Registry holds the registered providers in priority order and the one
// that is currently active.
type Registry struct {
	hooking.HookableBase

	defaultProvider Provider
	providers       []Provider
	active          Provider
}

// NewRegistry creates a registry that falls back to defaultProvider.
func NewRegistry(defaultProvider Provider) *Registry {
	if defaultProvider == nil {
		panic("a default provider is required")
	}

	return &Registry{defaultProvider: defaultProvider}
}

// Register appends a provider. Providers registered first are tried first.
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Providers returns the registered providers in priority order.
func (r *Registry) Providers() []Provider {
	return append([]Provider(nil), r.providers...)
}

// Default returns the fallback provider.
func (r *Registry) Default() Provider {
	return r.defaultProvider
}

// Resolve activates the first provider that applies to coord, or the default
// provider if none does, and returns it.
func (r *Registry) Resolve(coord world.Coordinate) Provider {
	r.active = r.defaultProvider

	for _, p := range r.providers {
		if p.Applies(coord) {
			r.active = p
			break
		}
	}

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    HookPosProviderSelected,
		Item:   r.active,
		Detail: Selection{
			Coordinate: coord,
			Provider:   r.active.Name(),
			Fallback:   r.active == r.defaultProvider,
		},
	})

	return r.active
}

// Unload clears the active provider.
func (r *Registry) Unload() {
	r.active = nil
}

// Current returns the active provider. ok is false before the first Resolve
// and after Unload.
func (r *Registry) Current() (p Provider, ok bool) {
	return r.active, r.active != nil
}

// KeyAt returns the key the active provider assigns to a block. Providers
// that are not BlockKeyers key every block by the player's position.
func (r *Registry) KeyAt(pos world.BlockPos) (world.Key, bool) {
	if r.active == nil {
		return world.Key{}, false
	}

	if k, ok := r.active.(BlockKeyer); ok {
		return k.KeyAt(pos), true
	}

	return r.active.PlayersCurrentKey()
}

// CurrentKey returns the key the active provider assigns to the player.
func (r *Registry) CurrentKey() (world.Key, bool) {
	if r.active == nil {
		return world.Key{}, false
	}

	return r.active.PlayersCurrentKey()
}
