// Package replay plays the part of the game client. It reads a scenario that
// describes a world, a bank of memories and a timeline of player actions, and
// drives a session with it tick by tick.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/provider"
	"github.com/sarchlab/chesttrack/world"
)

// Vec is a block position written as [x, y, z].
type Vec [3]int

// Pos converts the vector to a block position.
func (v Vec) Pos() world.BlockPos {
	return world.Pos(v[0], v[1], v[2])
}

// CoordinateSpec describes the save, server or realm.
type CoordinateSpec struct {
	Kind string `yaml:"kind"`
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Coordinate converts the scenario entry.
func (c CoordinateSpec) Coordinate() (world.Coordinate, error) {
	kind, err := world.ParseCoordinateKind(c.Kind)
	if err != nil {
		return world.Coordinate{}, err
	}

	if c.ID == "" {
		return world.Coordinate{}, errors.New("coordinate id is required")
	}

	return world.Coordinate{Kind: kind, ID: c.ID, Name: c.Name}, nil
}

// BlockSpec places a block in the world.
type BlockSpec struct {
	Pos       Vec    `yaml:"pos"`
	ID        string `yaml:"id"`
	Container bool   `yaml:"container"`

	// Root points secondary parts of multi-block containers at their owner.
	Root *Vec `yaml:"root"`
}

// State converts the scenario entry into a block state.
func (b BlockSpec) State() world.BlockState {
	s := world.BlockState{ID: b.ID, Container: b.Container}
	if b.Root != nil {
		root := b.Root.Pos()
		s.Root = &root
	}

	return s
}

// WorldSpec describes the simulated world.
type WorldSpec struct {
	Key       world.Key   `yaml:"key"`
	StartTime int64       `yaml:"start_time"`
	Blocks    []BlockSpec `yaml:"blocks"`
	Unloaded  []Vec       `yaml:"unloaded"`
}

// MemorySpec is a memory stored in the bank before the replay starts. Missing
// timestamps are unknown.
type MemorySpec struct {
	Key             world.Key          `yaml:"key"`
	Pos             Vec                `yaml:"pos"`
	Name            string             `yaml:"name"`
	Items           []memory.ItemStack `yaml:"items"`
	RealTimestamp   *time.Time         `yaml:"real_timestamp"`
	InGameTimestamp *int64             `yaml:"in_game_timestamp"`
	LoadedTimestamp *int64             `yaml:"loaded_timestamp"`
}

// Memory converts the scenario entry.
func (m MemorySpec) Memory() memory.Memory {
	mem := memory.Memory{
		Name:            m.Name,
		Items:           m.Items,
		RealTimestamp:   memory.UnknownRealTimestamp,
		InGameTimestamp: memory.UnknownWorldTimestamp,
		LoadedTimestamp: memory.UnknownLoadedTimestamp,
	}

	if m.RealTimestamp != nil {
		mem.RealTimestamp = *m.RealTimestamp
	}

	if m.InGameTimestamp != nil {
		mem.InGameTimestamp = *m.InGameTimestamp
	}

	if m.LoadedTimestamp != nil {
		mem.LoadedTimestamp = *m.LoadedTimestamp
	}

	return mem
}

// BankSpec describes the bank of the scenario's coordinate.
type BankSpec struct {
	Name       string                   `yaml:"name"`
	Integrity  memory.IntegritySettings `yaml:"integrity"`
	LoadedTime int64                    `yaml:"loaded_time"`
	Memories   []MemorySpec             `yaml:"memories"`
}

// ShardProviderSpec configures a provider.ShardProvider.
type ShardProviderSpec struct {
	Name      string           `yaml:"name"`
	Namespace string           `yaml:"namespace"`
	Servers   string           `yaml:"servers"`
	Shards    []provider.Shard `yaml:"shards"`
}

// OpenSpec is a container the player opens.
type OpenSpec struct {
	Pos   Vec                `yaml:"pos"`
	Name  string             `yaml:"name"`
	Items []memory.ItemStack `yaml:"items"`
}

// An Action happens at a tick of the replay. Exactly one of the fields other
// than At is set.
type Action struct {
	At int64 `yaml:"at"`

	Move      *Vec            `yaml:"move"`
	Break     *Vec            `yaml:"break"`
	Open      *OpenSpec       `yaml:"open"`
	SetBlock  *BlockSpec      `yaml:"set_block"`
	Unload    *Vec            `yaml:"unload"`
	Load      *Vec            `yaml:"load"`
	Dimension *world.Key      `yaml:"dimension"`
	Leave     bool            `yaml:"leave"`
	Join      *CoordinateSpec `yaml:"join"`
}

// Kind names the action.
func (a Action) Kind() string {
	switch {
	case a.Move != nil:
		return "move"
	case a.Break != nil:
		return "break"
	case a.Open != nil:
		return "open"
	case a.SetBlock != nil:
		return "set_block"
	case a.Unload != nil:
		return "unload"
	case a.Load != nil:
		return "load"
	case a.Dimension != nil:
		return "dimension"
	case a.Leave:
		return "leave"
	case a.Join != nil:
		return "join"
	default:
		return ""
	}
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (a Action) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("at", a.At).Str("action", a.Kind())
}

func (a Action) numKinds() int {
	n := 0

	for _, set := range []bool{
		a.Move != nil, a.Break != nil, a.Open != nil, a.SetBlock != nil,
		a.Unload != nil, a.Load != nil, a.Dimension != nil, a.Leave,
		a.Join != nil,
	} {
		if set {
			n++
		}
	}

	return n
}

// Expectation is checked when the replay ends.
type Expectation struct {
	// Remaining is the number of memories left in the bank.
	Remaining *int `yaml:"remaining"`

	// Evicted counts evictions by cause.
	Evicted map[string]int `yaml:"evicted"`
}

// A Scenario is a replay script.
type Scenario struct {
	Name       string              `yaml:"name"`
	Coordinate CoordinateSpec      `yaml:"coordinate"`
	Duration   int64               `yaml:"duration"`
	ClockStart time.Time           `yaml:"clock_start"`
	World      WorldSpec           `yaml:"world"`
	Player     *Vec                `yaml:"player"`
	Bank       BankSpec            `yaml:"bank"`
	Providers  []ShardProviderSpec `yaml:"providers"`
	Actions    []Action            `yaml:"actions"`
	Expect     *Expectation        `yaml:"expect"`
}

// DefaultClockStart is the wall-clock time of tick 0 when the scenario does
// not set one.
var DefaultClockStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return s, nil
}

// ParseScenario decodes and validates a scenario. Unknown fields are errors.
func ParseScenario(data []byte) (*Scenario, error) {
	s := &Scenario{
		World: WorldSpec{Key: world.Overworld},
		Bank:  BankSpec{Integrity: memory.DefaultIntegritySettings()},
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}

	if s.ClockStart.IsZero() {
		s.ClockStart = DefaultClockStart
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the scenario for mistakes that would make the replay
// meaningless.
func (s *Scenario) Validate() error {
	if _, err := s.Coordinate.Coordinate(); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}

	if s.Duration <= 0 {
		return errors.New("duration must be positive")
	}

	if s.World.Key.IsZero() {
		return errors.New("world key is required")
	}

	for i, m := range s.Bank.Memories {
		if m.Key.IsZero() {
			return fmt.Errorf("memory %d: key is required", i)
		}
	}

	for i, a := range s.Actions {
		if a.At < 0 || a.At >= s.Duration {
			return fmt.Errorf("action %d: tick %d outside [0, %d)",
				i, a.At, s.Duration)
		}

		if a.numKinds() != 1 {
			return fmt.Errorf("action %d: exactly one action per entry", i)
		}

		if a.Join != nil {
			if _, err := a.Join.Coordinate(); err != nil {
				return fmt.Errorf("action %d: %w", i, err)
			}
		}
	}

	return nil
}
