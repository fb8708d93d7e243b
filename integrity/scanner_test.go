package integrity

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/location"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/world"
)

type hookRecorder struct {
	ctxs []hooking.HookCtx
}

func (r *hookRecorder) Func(ctx hooking.HookCtx) {
	r.ctxs = append(r.ctxs, ctx)
}

func (r *hookRecorder) at(pos *hooking.HookPos) []hooking.HookCtx {
	var out []hooking.HookCtx

	for _, ctx := range r.ctxs {
		if ctx.Pos == pos {
			out = append(out, ctx)
		}
	}

	return out
}

func (r *hookRecorder) checkedPositions() []world.BlockPos {
	var out []world.BlockPos

	for _, ctx := range r.at(HookPosEntryChecked) {
		out = append(out, ctx.Item.(memory.Entry).Pos)
	}

	return out
}

func withLifetime(seconds int64) memory.Lifetime {
	l, err := memory.NewLifetime(seconds)
	Expect(err).ToNot(HaveOccurred())

	return l
}

var _ = Describe("Scanner", func() {
	var (
		mockCtrl *gomock.Controller
		w        *MockWorld
		client   *MockClient
		resolver *MockResolver
		loader   *memory.Loader
		bank     *memory.Bank
		scanner  *Scanner
		hooks    *hookRecorder
		gameTime int64
		now      time.Time
	)

	tickAt := func(t int64) {
		gameTime = t
		scanner.Tick(w)
	}

	settings := func() *memory.IntegritySettings {
		return &bank.Metadata().Integrity
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		w = NewMockWorld(mockCtrl)
		client = NewMockClient(mockCtrl)
		resolver = NewMockResolver(mockCtrl)

		gameTime = 0
		now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		w.EXPECT().GameTime().DoAndReturn(func() int64 { return gameTime }).AnyTimes()
		w.EXPECT().Key().Return(world.Overworld).AnyTimes()

		loader = memory.NewLoader()
		bank = memory.NewBank("test", nil)
		*settings() = memory.IntegritySettings{
			MemoryLifetime:    memory.LifetimeNever,
			LifetimeCountMode: memory.WorldTime,
		}

		scanner = MakeBuilder().
			WithLoader(loader).
			WithResolver(resolver).
			WithPlayerSource(client).
			WithClock(func() time.Time { return now }).
			BuildScanner()
		hooks = &hookRecorder{}
		scanner.AcceptHook(hooks)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("without an active bank", func() {
		It("should stay idle", func() {
			tickAt(10000)

			Expect(scanner.InSweep()).To(BeFalse())
			Expect(scanner.LastCompleteTick()).To(Equal(int64(-1)))
			Expect(hooks.ctxs).To(BeEmpty())
		})
	})

	Context("with an active bank", func() {
		BeforeEach(func() {
			for i := 0; i < 3; i++ {
				bank.AddMemory(world.Overworld, world.Pos(i, 64, 0), memory.Memory{})
			}

			loader.Load(bank)
		})

		It("should not refill before the refill interval has passed", func() {
			tickAt(0)
			tickAt(598)
			Expect(scanner.InSweep()).To(BeFalse())

			tickAt(599)
			Expect(scanner.InSweep()).To(BeTrue())
			Expect(hooks.at(HookPosRefill)).To(HaveLen(1))
		})

		It("should not refill when the key has no memories", func() {
			empty := memory.NewBank("empty", nil)
			loader.Load(empty)

			tickAt(1000)

			Expect(scanner.InSweep()).To(BeFalse())
			Expect(hooks.at(HookPosRefill)).To(BeEmpty())
		})

		It("should visit every entry exactly once, one per tick", func() {
			tickAt(1000)
			Expect(hooks.checkedPositions()).To(HaveLen(1))

			tickAt(1001)
			tickAt(1002)
			Expect(hooks.checkedPositions()).To(Equal([]world.BlockPos{
				world.Pos(0, 64, 0), world.Pos(1, 64, 0), world.Pos(2, 64, 0),
			}))
			Expect(scanner.InSweep()).To(BeTrue())

			tickAt(1003)
			Expect(scanner.InSweep()).To(BeFalse())
			Expect(scanner.LastCompleteTick()).To(Equal(int64(1003)))
			Expect(hooks.checkedPositions()).To(HaveLen(3))

			complete := hooks.at(HookPosSweepComplete)
			Expect(complete).To(HaveLen(1))
			Expect(complete[0].Detail).To(Equal(SweepComplete{
				BankID: "test", Key: world.Overworld, Tick: 1003, Entries: 3,
			}))
		})

		It("should report progress", func() {
			tickAt(1000)

			examined, total := scanner.Progress()
			Expect(examined).To(Equal(1))
			Expect(total).To(Equal(3))
		})

		It("should wait the refill interval after a sweep completes", func() {
			for t := int64(1000); t <= 1003; t++ {
				tickAt(t)
			}
			Expect(scanner.LastCompleteTick()).To(Equal(int64(1003)))

			for t := int64(1004); t < 1603; t++ {
				tickAt(t)
			}
			Expect(hooks.at(HookPosRefill)).To(HaveLen(1))
			Expect(hooks.checkedPositions()).To(HaveLen(3))

			tickAt(1603)
			Expect(hooks.at(HookPosRefill)).To(HaveLen(2))
			Expect(hooks.checkedPositions()).To(HaveLen(4))
		})

		It("should not see memories added during a sweep", func() {
			tickAt(1000)
			bank.AddMemory(world.Overworld, world.Pos(-5, 64, 0), memory.Memory{})
			tickAt(1001)
			tickAt(1002)
			tickAt(1003)

			Expect(hooks.checkedPositions()).ToNot(ContainElement(world.Pos(-5, 64, 0)))

			tickAt(1603)
			Expect(hooks.checkedPositions()).To(ContainElement(world.Pos(-5, 64, 0)))
		})

		It("should skip entries removed during a sweep without failing", func() {
			settings().MemoryLifetime = withLifetime(0)
			tickAt(1000)
			bank.RemoveMemory(world.Overworld, world.Pos(1, 64, 0))
			tickAt(1001)

			Expect(hooks.at(HookPosEvict)).To(HaveLen(1))
			Expect(bank.Count(world.Overworld)).To(Equal(1))
		})

		It("should discard the sweep when the active bank changes", func() {
			settings().MemoryLifetime = withLifetime(1)
			tickAt(1000)
			Expect(hooks.checkedPositions()).To(HaveLen(1))

			other := memory.NewBank("other", nil)
			other.Metadata().Integrity.MemoryLifetime = memory.LifetimeNever
			other.Metadata().Integrity.CheckPeriodicallyForMissingBlocks = false
			other.AddMemory(world.Overworld, world.Pos(100, 64, 100), memory.Memory{})
			loader.Load(other)

			tickAt(1001)

			resets := hooks.at(HookPosReset)
			Expect(resets).To(HaveLen(1))
			Expect(resets[0].Detail).To(Equal(Reset{Reason: "active bank changed", Remaining: 2}))
			Expect(hooks.checkedPositions()).To(Equal([]world.BlockPos{
				world.Pos(0, 64, 0), world.Pos(100, 64, 100),
			}))
			Expect(bank.Count(world.Overworld)).To(Equal(2))
		})

		It("should start idle and wait for memories after a switch", func() {
			tickAt(1000)

			loader.Load(memory.NewBank("empty", nil))
			tickAt(1001)

			Expect(scanner.InSweep()).To(BeFalse())
			Expect(scanner.LastCompleteTick()).To(Equal(int64(-1)))
		})

		It("should keep the refill interval when the bank is reloaded", func() {
			for t := int64(1000); t <= 1003; t++ {
				tickAt(t)
			}
			Expect(scanner.LastCompleteTick()).To(Equal(int64(1003)))

			loader.Unload()
			loader.Load(bank)
			tickAt(1004)

			Expect(scanner.InSweep()).To(BeFalse())
			Expect(scanner.LastCompleteTick()).To(Equal(int64(1003)))
			Expect(hooks.at(HookPosRefill)).To(HaveLen(1))

			tickAt(1603)
			Expect(hooks.at(HookPosRefill)).To(HaveLen(2))
		})

		It("should keep the refill interval when the key changes", func() {
			for t := int64(1000); t <= 1003; t++ {
				tickAt(t)
			}

			bank.AddMemory(world.Nether, world.Pos(0, 64, 0), memory.Memory{})
			nether := NewMockWorld(mockCtrl)
			nether.EXPECT().GameTime().Return(int64(1004)).AnyTimes()
			nether.EXPECT().Key().Return(world.Nether).AnyTimes()
			scanner.Tick(nether)

			Expect(scanner.InSweep()).To(BeFalse())
			Expect(hooks.at(HookPosRefill)).To(HaveLen(1))
		})

		It("should forget the last sweep when a tick runs without a bank", func() {
			for t := int64(1000); t <= 1003; t++ {
				tickAt(t)
			}

			loader.Unload()
			tickAt(1004)
			Expect(scanner.LastCompleteTick()).To(Equal(int64(-1)))

			loader.Load(bank)
			tickAt(1005)
			Expect(scanner.InSweep()).To(BeTrue())
		})

		It("should discard the sweep when the bank is unloaded", func() {
			tickAt(1000)
			loader.Unload()
			tickAt(1001)

			Expect(scanner.InSweep()).To(BeFalse())
			Expect(hooks.at(HookPosReset)).To(HaveLen(1))
			Expect(hooks.checkedPositions()).To(HaveLen(1))
		})

		It("should discard the sweep when the key changes", func() {
			nether := NewMockWorld(mockCtrl)
			nether.EXPECT().GameTime().Return(int64(1001)).AnyTimes()
			nether.EXPECT().Key().Return(world.Nether).AnyTimes()

			tickAt(1000)
			scanner.Tick(nether)

			resets := hooks.at(HookPosReset)
			Expect(resets).To(HaveLen(1))
			Expect(resets[0].Detail.(Reset).Reason).To(Equal("key changed"))
			Expect(scanner.InSweep()).To(BeFalse())
		})
	})

	Context("expiry", func() {
		pos := world.Pos(0, 64, 0)

		expectRemoved := func(removed bool) {
			tickAt(gameTime)

			_, ok := bank.Memory(world.Overworld, pos)
			Expect(ok).To(Equal(!removed))
		}

		BeforeEach(func() {
			settings().MemoryLifetime = withLifetime(60)
			loader.Load(bank)
		})

		DescribeTable("should only remove memories strictly past their lifetime",
			func(mode memory.LifetimeCountMode, extraTicks int64, removed bool) {
				settings().LifetimeCountMode = mode
				gameTime = 100000
				age := 60*world.TicksPerSecond + extraTicks
				bank.Metadata().SetLoadedTime(50000)

				m := memory.Memory{
					RealTimestamp:   now.Add(-time.Duration(age) * time.Second / world.TicksPerSecond),
					InGameTimestamp: gameTime - age,
					LoadedTimestamp: 50000 - age,
				}
				bank.AddMemory(world.Overworld, pos, m)

				expectRemoved(removed)
			},
			Entry("real time, exactly the lifetime", memory.RealTime, int64(0), false),
			Entry("real time, a second more", memory.RealTime, int64(world.TicksPerSecond), true),
			Entry("world time, exactly the lifetime", memory.WorldTime, int64(0), false),
			Entry("world time, less than a second more", memory.WorldTime, int64(world.TicksPerSecond-1), false),
			Entry("world time, a second more", memory.WorldTime, int64(world.TicksPerSecond), true),
			Entry("loaded time, exactly the lifetime", memory.LoadedTime, int64(0), false),
			Entry("loaded time, a second more", memory.LoadedTime, int64(world.TicksPerSecond), true),
		)

		It("should report how far past expiry the memory was", func() {
			gameTime = 100000
			bank.AddMemory(world.Overworld, pos, memory.Memory{InGameTimestamp: gameTime - 100*world.TicksPerSecond})

			expectRemoved(true)

			evictions := hooks.at(HookPosEvict)
			Expect(evictions).To(HaveLen(1))
			Expect(evictions[0].Detail).To(Equal(Eviction{
				BankID:            "test",
				Key:               world.Overworld,
				Pos:               pos,
				Cause:             CauseExpired,
				Tick:              100000,
				SecondsPastExpiry: 40,
			}))
		})

		It("should never expire named memories when preserving names", func() {
			settings().PreserveNamed = true
			gameTime = 1 << 40
			bank.AddMemory(world.Overworld, pos, memory.Memory{Name: "Keep", InGameTimestamp: 0})

			expectRemoved(false)
		})

		It("should expire named memories when not preserving names", func() {
			settings().PreserveNamed = false
			gameTime = 1 << 40
			bank.AddMemory(world.Overworld, pos, memory.Memory{Name: "Old", InGameTimestamp: 0})

			expectRemoved(true)
		})

		It("should never expire without a lifetime", func() {
			settings().MemoryLifetime = memory.LifetimeNever
			gameTime = 1 << 40
			bank.AddMemory(world.Overworld, pos, memory.Memory{InGameTimestamp: 0})

			expectRemoved(false)
		})

		DescribeTable("should expire memories with an unknown timestamp",
			func(mode memory.LifetimeCountMode) {
				settings().LifetimeCountMode = mode
				gameTime = 1000000
				bank.Metadata().SetLoadedTime(1000000)
				bank.AddMemory(world.Overworld, pos, memory.Memory{
					RealTimestamp:   memory.UnknownRealTimestamp,
					InGameTimestamp: memory.UnknownWorldTimestamp,
					LoadedTimestamp: memory.UnknownLoadedTimestamp,
				})

				expectRemoved(true)

				evictions := hooks.at(HookPosEvict)
				Expect(evictions).To(HaveLen(1))
				Expect(evictions[0].Detail.(Eviction).SecondsPastExpiry).
					To(BeNumerically(">", 0))
			},
			Entry("real time", memory.RealTime),
			Entry("world time", memory.WorldTime),
			Entry("loaded time", memory.LoadedTime),
		)

		It("should expire a zero lifetime after one whole second", func() {
			settings().MemoryLifetime = withLifetime(0)
			gameTime = 1000
			bank.AddMemory(world.Overworld, pos, memory.Memory{InGameTimestamp: 1000 - 19})

			expectRemoved(false)

			bank.AddMemory(world.Overworld, pos, memory.Memory{InGameTimestamp: 1000 - 20})
			tickAt(1001)
			tickAt(1001 + TicksBetweenEntryRefill)
			_, ok := bank.Memory(world.Overworld, pos)
			Expect(ok).To(BeFalse())
		})

		It("should not run the periodic check after an eviction", func() {
			settings().CheckPeriodicallyForMissingBlocks = true
			gameTime = 100000
			bank.AddMemory(world.Overworld, pos, memory.Memory{InGameTimestamp: 0})

			expectRemoved(true)
		})
	})

	Context("periodic check", func() {
		var player *MockPlayer

		pos := world.Pos(10, 64, 10)

		BeforeEach(func() {
			settings().CheckPeriodicallyForMissingBlocks = true
			bank.AddMemory(world.Overworld, pos, memory.Memory{})
			loader.Load(bank)

			player = NewMockPlayer(mockCtrl)
			gameTime = 1000
		})

		withPlayerAt := func(p world.BlockPos) {
			client.EXPECT().Player().Return(player, true).AnyTimes()
			player.EXPECT().BlockPosition().Return(p).AnyTimes()
		}

		expectKept := func(kept bool) {
			tickAt(1000)

			_, ok := bank.Memory(world.Overworld, pos)
			Expect(ok).To(Equal(kept))
		}

		It("should keep memories that resolve to the same location", func() {
			withPlayerAt(pos)
			w.EXPECT().IsLoaded(pos).Return(true)
			resolver.EXPECT().
				FromBlock(player, gomock.Any()).
				DoAndReturn(func(_ world.Player, s location.BlockSource) (location.Location, bool) {
					Expect(s.Pos()).To(Equal(pos))
					return location.Location{Key: world.Overworld, Pos: pos}, true
				})

			expectKept(true)
		})

		It("should remove memories whose container is gone", func() {
			withPlayerAt(pos)
			w.EXPECT().IsLoaded(pos).Return(true)
			resolver.EXPECT().FromBlock(player, gomock.Any()).Return(location.Location{}, false)

			expectKept(false)

			evictions := hooks.at(HookPosEvict)
			Expect(evictions).To(HaveLen(1))
			Expect(evictions[0].Detail.(Eviction).Cause).To(Equal(CausePeriodicCheck))
		})

		It("should remove memories that resolve to another position", func() {
			withPlayerAt(pos)
			w.EXPECT().IsLoaded(pos).Return(true)
			resolver.EXPECT().
				FromBlock(player, gomock.Any()).
				Return(location.Location{Key: world.Overworld, Pos: pos.Offset(-1, 0, 0)}, true)

			expectKept(false)
		})

		It("should remove memories that resolve to another key", func() {
			withPlayerAt(pos)
			w.EXPECT().IsLoaded(pos).Return(true)
			resolver.EXPECT().
				FromBlock(player, gomock.Any()).
				Return(location.Location{Key: world.Nether, Pos: pos}, true)

			expectKept(false)
		})

		It("should check memories exactly at the range limit", func() {
			withPlayerAt(pos.Offset(32, 0, 0))
			w.EXPECT().IsLoaded(pos).Return(true)
			resolver.EXPECT().FromBlock(player, gomock.Any()).Return(location.Location{}, false)

			expectKept(false)
		})

		It("should skip memories out of range", func() {
			withPlayerAt(pos.Offset(32, 1, 0))
			w.EXPECT().IsLoaded(pos).Return(true)

			expectKept(true)
		})

		It("should skip memories in unloaded chunks", func() {
			withPlayerAt(pos)
			w.EXPECT().IsLoaded(pos).Return(false)

			expectKept(true)
		})

		It("should skip when there is no player", func() {
			client.EXPECT().Player().Return(nil, false)

			expectKept(true)
		})

		It("should not run when disabled", func() {
			settings().CheckPeriodicallyForMissingBlocks = false

			expectKept(true)
		})
	})
})
