package replay

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/integrity"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/provider"
	"github.com/sarchlab/chesttrack/session"
	"github.com/sarchlab/chesttrack/timing"
	"github.com/sarchlab/chesttrack/world"
)

// HookPosAction is invoked with the Action before it is applied.
var HookPosAction = &hooking.HookPos{Name: "Action"}

// Stats summarizes what happened during a replay.
type Stats struct {
	Ticks     int64
	Sweeps    int
	Resets    int
	Evictions map[integrity.Cause]int

	// Remaining is the number of memories in the bank when the replay
	// ended.
	Remaining int
}

// A Host runs a scenario. It is a ticking component that ticks once per game
// tick until the scenario's duration has elapsed.
type Host struct {
	*timing.TickingComponent
	hooking.HookableBase

	scenario *Scenario
	storage  *memory.InMemoryStorage
	world    *SimWorld
	player   *SimPlayer
	client   *SimClient
	session  *session.Session
	actions  map[int64][]Action

	bankID  string
	stats   Stats
	err     error
	stopped atomic.Bool
}

// NewHost prepares a scenario to run on engine. The scenario's bank is placed
// in storage under the ID the scenario's provider assigns.
func NewHost(engine timing.Engine, s *Scenario) (*Host, error) {
	h := &Host{
		scenario: s,
		storage:  memory.NewInMemoryStorage(),
		world:    NewSimWorld(s.World.Key, s.World.StartTime),
		actions:  make(map[int64][]Action),
		stats:    Stats{Evictions: make(map[integrity.Cause]int)},
	}
	h.TickingComponent = timing.NewTickingComponent("Host", engine, h)

	h.buildWorld()

	providers, err := h.buildProviders()
	if err != nil {
		return nil, err
	}

	h.session = session.MakeBuilder().
		WithClient(h.client).
		WithStorage(h.storage).
		WithClock(h.now).
		WithProviders(providers...).
		Build()

	if err := h.seedBank(); err != nil {
		return nil, err
	}

	for _, a := range s.Actions {
		h.actions[a.At] = append(h.actions[a.At], a)
	}

	h.session.AcceptHook(hooking.HookFunc(h.count))

	return h, nil
}

func (h *Host) buildWorld() {
	for _, b := range h.scenario.World.Blocks {
		h.world.SetBlock(b.Pos.Pos(), b.State())
	}

	for _, v := range h.scenario.World.Unloaded {
		h.world.SetLoaded(v.Pos(), false)
	}

	h.client = &SimClient{level: h.world}

	if h.scenario.Player != nil {
		h.player = &SimPlayer{pos: h.scenario.Player.Pos()}
		h.client.player = h.player
	}
}

func (h *Host) buildProviders() ([]provider.Provider, error) {
	var providers []provider.Provider

	for _, ps := range h.scenario.Providers {
		p, err := provider.NewShardProvider(
			ps.Name, ps.Namespace, ps.Servers, ps.Shards, h.client)
		if err != nil {
			return nil, err
		}

		providers = append(providers, p)
	}

	return providers, nil
}

func (h *Host) seedBank() error {
	coord, err := h.scenario.Coordinate.Coordinate()
	if err != nil {
		return err
	}

	registry := h.session.Registry()
	h.bankID = registry.Resolve(coord).MemoryBankID(coord)
	registry.Unload()

	b := h.scenario.Bank

	metadata := memory.NewMetadata(b.Name)
	metadata.Integrity = b.Integrity
	metadata.SetLoadedTime(b.LoadedTime)

	bank := memory.NewBank(h.bankID, metadata)
	for _, m := range b.Memories {
		bank.AddMemory(m.Key, m.Pos.Pos(), m.Memory())
	}

	return h.storage.Save(bank)
}

// Session returns the session driven by the host.
func (h *Host) Session() *session.Session {
	return h.session
}

// World returns the simulated world.
func (h *Host) World() *SimWorld {
	return h.world
}

// Start joins the scenario's coordinate and schedules the first tick.
func (h *Host) Start() error {
	coord, err := h.scenario.Coordinate.Coordinate()
	if err != nil {
		return err
	}

	if err := h.session.Join(coord); err != nil {
		return err
	}

	h.TickNow()

	return nil
}

// Stop ends the replay after the current tick. The bank is saved as if the
// scenario had run to its end. It is safe to call from any goroutine.
func (h *Host) Stop() {
	h.stopped.Store(true)
}

// now is the wall clock of the replay. Every tick lasts 1/20 s.
func (h *Host) now() time.Time {
	ticks := h.Engine.Now()
	return h.scenario.ClockStart.Add(
		time.Duration(ticks) * time.Second / world.TicksPerSecond)
}

// Tick runs one game tick: the actions of the tick, then the end-of-tick
// event. On the last tick the host leaves, which saves the bank.
func (h *Host) Tick() bool {
	if h.err != nil {
		return false
	}

	tick := h.Engine.Now()
	h.world.SetGameTime(h.scenario.World.StartTime + tick)

	for _, a := range h.actions[tick] {
		if err := h.apply(a); err != nil {
			h.err = fmt.Errorf("tick %d: %s: %w", tick, a.Kind(), err)
			return false
		}
	}

	h.session.WorldTick.Fire(h.world)
	h.stats.Ticks++

	if tick+1 < h.scenario.Duration && !h.stopped.Load() {
		return true
	}

	h.finish()

	return false
}

func (h *Host) apply(a Action) error {
	h.InvokeHook(hooking.HookCtx{
		Domain: h, Pos: HookPosAction, Item: a, Detail: a})

	switch {
	case a.Move != nil:
		if h.player == nil {
			h.player = &SimPlayer{}
			h.client.player = h.player
		}

		h.player.MoveTo(a.Move.Pos())
	case a.Break != nil:
		pos := a.Break.Pos()
		state := h.world.BlockState(pos)
		h.world.SetBlock(pos, world.Air)
		h.session.PlayerDestroyBlock.Fire(world.BlockBreak{
			World: h.world,
			Pos:   pos,
			State: state,
		})
	case a.Open != nil:
		pos := a.Open.Pos.Pos()
		if _, ok := h.session.Remember(
			h.world, pos, a.Open.Name, a.Open.Items); !ok {
			return fmt.Errorf("no container to remember at %s", pos)
		}
	case a.SetBlock != nil:
		h.world.SetBlock(a.SetBlock.Pos.Pos(), a.SetBlock.State())
	case a.Unload != nil:
		h.world.SetLoaded(a.Unload.Pos(), false)
	case a.Load != nil:
		h.world.SetLoaded(a.Load.Pos(), true)
	case a.Dimension != nil:
		h.world.SetKey(*a.Dimension)
	case a.Leave:
		return h.session.Leave()
	case a.Join != nil:
		coord, err := a.Join.Coordinate()
		if err != nil {
			return err
		}

		return h.session.Join(coord)
	}

	return nil
}

func (h *Host) finish() {
	if err := h.session.Leave(); err != nil {
		h.err = err
		return
	}

	bank, found, err := h.storage.Load(h.bankID)
	if err != nil || !found {
		return
	}

	h.stats.Remaining = 0
	for _, key := range bank.Keys() {
		h.stats.Remaining += bank.Count(key)
	}
}

func (h *Host) count(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case integrity.HookPosEvict:
		h.stats.Evictions[ctx.Detail.(integrity.Eviction).Cause]++
	case integrity.HookPosSweepComplete:
		h.stats.Sweeps++
	case integrity.HookPosReset:
		h.stats.Resets++
	}
}

// Err returns the error that stopped the replay, if any.
func (h *Host) Err() error {
	return h.err
}

// Stats returns the summary of the replay so far.
func (h *Host) Stats() Stats {
	return h.stats
}

// Storage returns the storage holding the banks of the replay.
func (h *Host) Storage() *memory.InMemoryStorage {
	return h.storage
}

// Check compares the stats of a finished replay with the scenario's
// expectations and describes every mismatch.
func (h *Host) Check() []string {
	expect := h.scenario.Expect
	if expect == nil {
		return nil
	}

	var mismatches []string

	if expect.Remaining != nil && *expect.Remaining != h.stats.Remaining {
		mismatches = append(mismatches, fmt.Sprintf(
			"remaining: expected %d, got %d",
			*expect.Remaining, h.stats.Remaining))
	}

	causes := make([]string, 0, len(expect.Evicted))
	for c := range expect.Evicted {
		causes = append(causes, c)
	}

	sort.Strings(causes)

	for _, name := range causes {
		cause, err := integrity.ParseCause(name)
		if err != nil {
			mismatches = append(mismatches, err.Error())
			continue
		}

		if got := h.stats.Evictions[cause]; got != expect.Evicted[name] {
			mismatches = append(mismatches, fmt.Sprintf(
				"evicted %s: expected %d, got %d",
				name, expect.Evicted[name], got))
		}
	}

	return mismatches
}
