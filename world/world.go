// Package world defines the value types and host collaborators that the rest
// of chesttrack reasons about: block positions, region keys, the coordinate of
// the save or server the player is on, and the live world and player.
package world

import (
	"fmt"
	"strings"
)

// TicksPerSecond is the number of world ticks simulated in one second.
const TicksPerSecond = 20

// A BlockPos is the integer position of a block in a world.
type BlockPos struct {
	X, Y, Z int
}

// Pos creates a BlockPos.
func Pos(x, y, z int) BlockPos {
	return BlockPos{X: x, Y: y, Z: z}
}

// DistSqr returns the squared euclidean distance between two positions.
func (p BlockPos) DistSqr(o BlockPos) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	dz := float64(p.Z - o.Z)

	return dx*dx + dy*dy + dz*dz
}

// Offset returns the position moved by the given deltas.
func (p BlockPos) Offset(dx, dy, dz int) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Less orders positions by X, then Y, then Z.
func (p BlockPos) Less(o BlockPos) bool {
	if p.X != o.X {
		return p.X < o.X
	}

	if p.Y != o.Y {
		return p.Y < o.Y
	}

	return p.Z < o.Z
}

func (p BlockPos) String() string {
	return fmt.Sprintf("%d, %d, %d", p.X, p.Y, p.Z)
}

// DefaultNamespace is used when a key is parsed without a namespace.
const DefaultNamespace = "minecraft"

// A Key names a region of memories inside a bank, such as a dimension or a
// server shard. Keys are written as "namespace:path".
type Key struct {
	Namespace string
	Path      string
}

// Overworld, Nether and End are the dimension keys of a vanilla world.
var (
	Overworld = Key{Namespace: DefaultNamespace, Path: "overworld"}
	Nether    = Key{Namespace: DefaultNamespace, Path: "the_nether"}
	End       = Key{Namespace: DefaultNamespace, Path: "the_end"}
)

// ParseKey parses "namespace:path" or a bare path.
func ParseKey(s string) (Key, error) {
	namespace, path, found := strings.Cut(s, ":")
	if !found {
		namespace, path = DefaultNamespace, s
	}

	if namespace == "" || path == "" {
		return Key{}, fmt.Errorf("invalid key %q", s)
	}

	if strings.ContainsAny(namespace, "/: ") || strings.ContainsAny(path, ": ") {
		return Key{}, fmt.Errorf("invalid character in key %q", s)
	}

	return Key{Namespace: namespace, Path: path}, nil
}

// MustParseKey is ParseKey that panics on malformed input.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}

	return k
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool {
	return k.Namespace == "" && k.Path == ""
}

func (k Key) String() string {
	return k.Namespace + ":" + k.Path
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
