package integrity

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/world"
)

// Cause tells why a memory was evicted.
type Cause int

// The eviction causes.
const (
	CauseExpired Cause = iota
	CausePeriodicCheck
	CausePlayerBlockBreak
)

func (c Cause) String() string {
	switch c {
	case CauseExpired:
		return "expired"
	case CausePeriodicCheck:
		return "periodic_check"
	case CausePlayerBlockBreak:
		return "player_block_break"
	default:
		panic(fmt.Sprintf("unknown cause %d", int(c)))
	}
}

// ParseCause parses the String form of a Cause.
func ParseCause(s string) (Cause, error) {
	for _, c := range []Cause{
		CauseExpired, CausePeriodicCheck, CausePlayerBlockBreak,
	} {
		if c.String() == s {
			return c, nil
		}
	}

	return 0, fmt.Errorf("unknown eviction cause %q", s)
}

// Hook positions of the scanner and the destruction listener.
var (
	// HookPosRefill is invoked with a Refill when a sweep starts.
	HookPosRefill = &hooking.HookPos{Name: "Refill"}

	// HookPosEntryChecked is invoked with the memory.Entry being examined.
	HookPosEntryChecked = &hooking.HookPos{Name: "EntryChecked"}

	// HookPosSweepComplete is invoked with a SweepComplete.
	HookPosSweepComplete = &hooking.HookPos{Name: "SweepComplete"}

	// HookPosReset is invoked with a Reset when a sweep is abandoned.
	HookPosReset = &hooking.HookPos{Name: "Reset"}

	// HookPosEvict is invoked with an Eviction after a memory is removed.
	HookPosEvict = &hooking.HookPos{Name: "Evict"}
)

// Refill describes the snapshot a sweep works on.
type Refill struct {
	BankID  string
	Key     world.Key
	Tick    int64
	Entries int
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r Refill) MarshalZerologObject(e *zerolog.Event) {
	e.Str("bank", r.BankID).
		Stringer("key", r.Key).
		Int64("tick", r.Tick).
		Int("entries", r.Entries)
}

// SweepComplete describes a finished sweep.
type SweepComplete struct {
	BankID  string
	Key     world.Key
	Tick    int64
	Entries int
	Evicted int
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s SweepComplete) MarshalZerologObject(e *zerolog.Event) {
	e.Str("bank", s.BankID).
		Stringer("key", s.Key).
		Int64("tick", s.Tick).
		Int("entries", s.Entries).
		Int("evicted", s.Evicted)
}

// Reset describes an abandoned sweep.
type Reset struct {
	Reason    string
	Remaining int
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r Reset) MarshalZerologObject(e *zerolog.Event) {
	e.Str("reason", r.Reason).Int("remaining", r.Remaining)
}

// Eviction describes a removed memory.
type Eviction struct {
	BankID string
	Key    world.Key
	Pos    world.BlockPos
	Cause  Cause
	Tick   int64

	// SecondsPastExpiry is set for CauseExpired.
	SecondsPastExpiry int64
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (ev Eviction) MarshalZerologObject(e *zerolog.Event) {
	e.Str("bank", ev.BankID).
		Stringer("key", ev.Key).
		Stringer("pos", ev.Pos).
		Stringer("cause", ev.Cause).
		Int64("tick", ev.Tick)

	if ev.Cause == CauseExpired {
		e.Int64("seconds_past_expiry", ev.SecondsPastExpiry)
	}
}
