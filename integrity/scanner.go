// Package integrity keeps remembered containers in sync with the world. The
// Scanner ages out and re-validates memories in the background, one entry per
// tick; the DestructionListener drops memories the player breaks.
package integrity

import (
	"time"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/location"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/world"
)

const (
	// TicksBetweenEntryRefill is the minimum number of ticks between the end
	// of a sweep and the start of the next one.
	TicksBetweenEntryRefill = 600

	// PeriodicCheckRangeSquared bounds the squared distance from the player
	// to memories that are re-resolved.
	PeriodicCheckRangeSquared = 32 * 32
)

// A PlayerSource provides the local player, if there is one.
type PlayerSource interface {
	Player() (world.Player, bool)
}

// A Scanner sweeps the memories of the active bank under the current key. It
// takes a snapshot of the entries and examines exactly one entry per tick, so
// that the cost of a tick does not depend on the size of the bank.
type Scanner struct {
	hooking.HookableBase

	loader   *memory.Loader
	resolver location.Resolver
	players  PlayerSource
	keyOf    location.KeyFunc
	now      func() time.Time

	entries          []memory.Entry
	index            int
	lastCompleteTick int64
	evicted          int

	generation uint64
	bankID     string
	key        world.Key
}

// Tick advances the sweep by at most one entry. It is meant to be called at
// the end of every world tick.
func (s *Scanner) Tick(w world.World) {
	if s.loader.Generation() != s.generation {
		s.generation = s.loader.Generation()
		s.abandon("active bank changed")
	}

	bank, ok := s.loader.Active()
	if !ok {
		s.reset("no active bank")
		return
	}

	gameTime := w.GameTime()
	key := s.keyOf(w)

	if s.InSweep() && key != s.key {
		s.abandon("key changed")
	}

	if !s.InSweep() &&
		gameTime >= s.lastCompleteTick+TicksBetweenEntryRefill {
		s.refill(bank, key, gameTime)
	}

	if !s.InSweep() {
		return
	}

	if s.index >= len(s.entries) {
		s.complete(gameTime)
		return
	}

	entry := s.entries[s.index]
	s.index++

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosEntryChecked,
		Item:   entry,
	})

	if s.checkExpiry(bank, entry, gameTime) {
		return
	}

	s.checkPeriodically(bank, w, entry, gameTime)
}

// InSweep tells if a snapshot is being examined.
func (s *Scanner) InSweep() bool {
	return len(s.entries) > 0
}

// Progress returns how many entries of the current snapshot have been
// examined and how many it holds.
func (s *Scanner) Progress() (examined, total int) {
	return s.index, len(s.entries)
}

// LastCompleteTick returns the game time at which the last sweep finished,
// or -1.
func (s *Scanner) LastCompleteTick() int64 {
	return s.lastCompleteTick
}

// reset abandons the sweep and forgets when the last one completed, so that
// the next bank is swept as soon as it has memories.
func (s *Scanner) reset(reason string) {
	s.abandon(reason)
	s.lastCompleteTick = -1
}

// abandon discards the snapshot. The refill interval still counts from the
// last completed sweep.
func (s *Scanner) abandon(reason string) {
	if s.InSweep() {
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosReset,
			Detail: Reset{Reason: reason, Remaining: len(s.entries) - s.index},
		})
	}

	s.clear()
}

func (s *Scanner) clear() {
	s.entries = nil
	s.index = 0
	s.evicted = 0
}

func (s *Scanner) refill(bank *memory.Bank, key world.Key, gameTime int64) {
	entries := bank.Entries(key)
	if len(entries) == 0 {
		return
	}

	s.entries = entries
	s.index = 0
	s.evicted = 0
	s.bankID = bank.ID()
	s.key = key

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosRefill,
		Detail: Refill{
			BankID:  s.bankID,
			Key:     key,
			Tick:    gameTime,
			Entries: len(entries),
		},
	})
}

func (s *Scanner) complete(gameTime int64) {
	detail := SweepComplete{
		BankID:  s.bankID,
		Key:     s.key,
		Tick:    gameTime,
		Entries: len(s.entries),
		Evicted: s.evicted,
	}

	s.lastCompleteTick = gameTime
	s.clear()

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosSweepComplete,
		Detail: detail,
	})
}

func (s *Scanner) checkExpiry(
	bank *memory.Bank,
	entry memory.Entry,
	gameTime int64,
) bool {
	metadata := bank.Metadata()
	pastExpiry, ok := SecondsPastExpiry(metadata.Integrity, entry.Memory, Clocks{
		Now:        s.now(),
		GameTime:   gameTime,
		LoadedTime: metadata.LoadedTime(),
	})

	if !ok || pastExpiry <= 0 {
		return false
	}

	s.evict(bank, entry.Pos, Eviction{
		Cause:             CauseExpired,
		Tick:              gameTime,
		SecondsPastExpiry: pastExpiry,
	})

	return true
}

func (s *Scanner) checkPeriodically(
	bank *memory.Bank,
	w world.World,
	entry memory.Entry,
	gameTime int64,
) {
	if !bank.Metadata().Integrity.CheckPeriodicallyForMissingBlocks {
		return
	}

	player, ok := s.players.Player()
	if !ok || player == nil {
		return
	}

	if !w.IsLoaded(entry.Pos) {
		return
	}

	if entry.Pos.DistSqr(player.BlockPosition()) > PeriodicCheckRangeSquared {
		return
	}

	source := location.NewCachedBlockSource(w, entry.Pos)

	loc, found := s.resolver.FromBlock(player, source)
	if found && loc.Key == s.key && loc.Pos == entry.Pos {
		return
	}

	s.evict(bank, entry.Pos, Eviction{
		Cause: CausePeriodicCheck,
		Tick:  gameTime,
	})
}

func (s *Scanner) evict(bank *memory.Bank, pos world.BlockPos, ev Eviction) {
	if !bank.RemoveMemory(s.key, pos) {
		return
	}

	s.evicted++

	ev.BankID = bank.ID()
	ev.Key = s.key
	ev.Pos = pos

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosEvict,
		Detail: ev,
	})
}
