package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LifetimeCountMode selects the clock used to age memories.
type LifetimeCountMode int

// The lifetime count modes.
const (
	// RealTime ages memories by wall-clock time.
	RealTime LifetimeCountMode = iota

	// WorldTime ages memories by the world's tick counter.
	WorldTime

	// LoadedTime ages memories only while the bank is loaded.
	LoadedTime
)

func (m LifetimeCountMode) String() string {
	switch m {
	case RealTime:
		return "real_time"
	case WorldTime:
		return "world_time"
	case LoadedTime:
		return "loaded_time"
	default:
		panic(fmt.Sprintf("unknown lifetime count mode %d", int(m)))
	}
}

// ParseLifetimeCountMode parses the String form of a LifetimeCountMode.
func ParseLifetimeCountMode(s string) (LifetimeCountMode, error) {
	switch strings.ToLower(s) {
	case "real_time":
		return RealTime, nil
	case "world_time":
		return WorldTime, nil
	case "loaded_time":
		return LoadedTime, nil
	default:
		return 0, fmt.Errorf("unknown lifetime count mode %q", s)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (m LifetimeCountMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *LifetimeCountMode) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseLifetimeCountMode(node.Value)
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// ErrNegativeLifetime is returned for lifetimes below zero.
var ErrNegativeLifetime = errors.New("memory lifetime cannot be negative")

// A Lifetime is how long a memory stays valid. The zero value never expires.
type Lifetime struct {
	seconds int64
	set     bool
}

// LifetimeNever keeps memories forever.
var LifetimeNever = Lifetime{}

// Lifetime presets.
var (
	Lifetime5Minutes  = mustLifetime(5 * time.Minute)
	Lifetime10Minutes = mustLifetime(10 * time.Minute)
	Lifetime15Minutes = mustLifetime(15 * time.Minute)
	Lifetime30Minutes = mustLifetime(30 * time.Minute)
	Lifetime1Hour     = mustLifetime(time.Hour)
	Lifetime2Hours    = mustLifetime(2 * time.Hour)
	Lifetime5Hours    = mustLifetime(5 * time.Hour)
	Lifetime1Day      = mustLifetime(24 * time.Hour)
	Lifetime7Days     = mustLifetime(7 * 24 * time.Hour)
)

func mustLifetime(d time.Duration) Lifetime {
	l, err := NewLifetime(int64(d / time.Second))
	if err != nil {
		panic(err)
	}

	return l
}

// NewLifetime creates a lifetime of the given number of seconds. A lifetime of
// zero expires a memory as soon as one whole second has passed.
func NewLifetime(seconds int64) (Lifetime, error) {
	if seconds < 0 {
		return Lifetime{}, ErrNegativeLifetime
	}

	return Lifetime{seconds: seconds, set: true}, nil
}

// Seconds returns the lifetime. ok is false when memories never expire.
func (l Lifetime) Seconds() (seconds int64, ok bool) {
	return l.seconds, l.set
}

func (l Lifetime) String() string {
	if !l.set {
		return "never"
	}

	return (time.Duration(l.seconds) * time.Second).String()
}

// MarshalYAML writes the lifetime as seconds, or "never".
func (l Lifetime) MarshalYAML() (any, error) {
	if !l.set {
		return "never", nil
	}

	return l.seconds, nil
}

// UnmarshalYAML accepts "never", a number of seconds, or a Go duration such
// as "30m".
func (l *Lifetime) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "never" || node.Value == "" {
		*l = LifetimeNever
		return nil
	}

	var seconds int64
	if err := node.Decode(&seconds); err == nil {
		parsed, err := NewLifetime(seconds)
		if err != nil {
			return err
		}

		*l = parsed

		return nil
	}

	d, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid memory lifetime %q", node.Value)
	}

	parsed, err := NewLifetime(int64(d / time.Second))
	if err != nil {
		return err
	}

	*l = parsed

	return nil
}

// IntegritySettings controls how memories are kept in sync with the world.
type IntegritySettings struct {
	// RemoveOnPlayerBlockBreak removes a memory when the player breaks the
	// block it is at.
	RemoveOnPlayerBlockBreak bool `yaml:"remove_on_player_block_break"`

	// PreserveNamed exempts named memories from expiring.
	PreserveNamed bool `yaml:"preserve_named"`

	MemoryLifetime    Lifetime          `yaml:"memory_lifetime"`
	LifetimeCountMode LifetimeCountMode `yaml:"lifetime_count_mode"`

	// CheckPeriodicallyForMissingBlocks re-resolves nearby memories and
	// removes those whose container is gone.
	CheckPeriodicallyForMissingBlocks bool `yaml:"check_periodically_for_missing_blocks"`
}

// DefaultIntegritySettings returns the settings of a new bank.
func DefaultIntegritySettings() IntegritySettings {
	return IntegritySettings{
		RemoveOnPlayerBlockBreak:          true,
		PreserveNamed:                     true,
		MemoryLifetime:                    LifetimeNever,
		LifetimeCountMode:                 LoadedTime,
		CheckPeriodicallyForMissingBlocks: true,
	}
}
