package provider

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/sarchlab/chesttrack/world"
)

// A Shard is a slice of a world along the X axis, starting at MinX.
type Shard struct {
	Name string `yaml:"name"`
	MinX int    `yaml:"min_x"`
}

// ShardProvider serves servers that split one world into shards, each with
// its own storage. The shard is chosen by the player's X coordinate.
type ShardProvider struct {
	name      string
	namespace string
	servers   *regexp.Regexp
	shards    []Shard
	client    world.Client
}

// NewShardProvider creates a provider for the servers whose address matches
// pattern. Keys are "namespace:<shard name>".
func NewShardProvider(
	name, namespace, pattern string,
	shards []Shard,
	client world.Client,
) (*ShardProvider, error) {
	servers, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("shard provider %s: %w", name, err)
	}

	if len(shards) == 0 {
		return nil, fmt.Errorf("shard provider %s: no shards", name)
	}

	sorted := slices.Clone(shards)
	slices.SortFunc(sorted, func(a, b Shard) int { return a.MinX - b.MinX })

	for _, s := range sorted {
		if _, err := world.ParseKey(namespace + ":" + s.Name); err != nil {
			return nil, fmt.Errorf("shard provider %s: %w", name, err)
		}
	}

	return &ShardProvider{
		name:      name,
		namespace: namespace,
		servers:   servers,
		shards:    sorted,
		client:    client,
	}, nil
}

// Name returns the provider name.
func (p *ShardProvider) Name() string {
	return p.name
}

// Applies matches multiplayer servers by address.
func (p *ShardProvider) Applies(coord world.Coordinate) bool {
	return coord.Kind == world.Multiplayer && p.servers.MatchString(coord.ID)
}

// PlayersCurrentKey returns the key of the shard the player stands in.
func (p *ShardProvider) PlayersCurrentKey() (world.Key, bool) {
	player, ok := p.client.Player()
	if !ok {
		return world.Key{}, false
	}

	return p.KeyAt(player.BlockPosition()), true
}

// KeyAt returns the key of the shard that holds pos. Positions west of the
// first shard belong to the first shard.
func (p *ShardProvider) KeyAt(pos world.BlockPos) world.Key {
	x := pos.X
	shard := p.shards[0]

	for _, s := range p.shards[1:] {
		if x < s.MinX {
			break
		}

		shard = s
	}

	return world.Key{Namespace: p.namespace, Path: shard.Name}
}

// MemoryBankID keeps all shards of a server in one bank.
func (p *ShardProvider) MemoryBankID(coord world.Coordinate) string {
	return coord.SafeID() + "-" + p.name
}
