package journal

import (
	"github.com/rs/xid"

	"github.com/sarchlab/chesttrack/integrity"
)

// An EvictionRow is a removed memory.
type EvictionRow struct {
	ID                string
	BankID            string
	Key               string
	X, Y, Z           int
	Cause             string
	Tick              int64
	SecondsPastExpiry int64
}

// NewEvictionRow converts an eviction reported by the integrity components.
func NewEvictionRow(ev integrity.Eviction) EvictionRow {
	return EvictionRow{
		ID:                xid.New().String(),
		BankID:            ev.BankID,
		Key:               ev.Key.String(),
		X:                 ev.Pos.X,
		Y:                 ev.Pos.Y,
		Z:                 ev.Pos.Z,
		Cause:             ev.Cause.String(),
		Tick:              ev.Tick,
		SecondsPastExpiry: ev.SecondsPastExpiry,
	}
}

// A SweepRow is a completed sweep.
type SweepRow struct {
	ID      string
	BankID  string
	Key     string
	Tick    int64
	Entries int
	Evicted int
}

// NewSweepRow converts a completed sweep.
func NewSweepRow(s integrity.SweepComplete) SweepRow {
	return SweepRow{
		ID:      xid.New().String(),
		BankID:  s.BankID,
		Key:     s.Key.String(),
		Tick:    s.Tick,
		Entries: s.Entries,
		Evicted: s.Evicted,
	}
}

// ExecInfo is a property of the run that produced the journal.
type ExecInfo struct {
	Property string
	Value    string
}
