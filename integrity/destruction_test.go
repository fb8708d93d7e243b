package integrity

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/memory"
	"github.com/sarchlab/chesttrack/world"
)

var _ = Describe("DestructionListener", func() {
	var (
		mockCtrl *gomock.Controller
		w        *MockWorld
		hook     *MockHook
		loader   *memory.Loader
		bank     *memory.Bank
		listener *DestructionListener
		pos      world.BlockPos
		broken   world.BlockBreak
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		w = NewMockWorld(mockCtrl)
		w.EXPECT().Key().Return(world.Overworld).AnyTimes()
		w.EXPECT().GameTime().Return(int64(42)).AnyTimes()
		hook = NewMockHook(mockCtrl)

		loader = memory.NewLoader()
		bank = memory.NewBank("test", nil)
		pos = world.Pos(3, 70, -2)
		bank.AddMemory(world.Overworld, pos, memory.Memory{})

		listener = MakeBuilder().WithLoader(loader).BuildDestructionListener()
		listener.AcceptHook(hook)

		broken = world.BlockBreak{
			World: w,
			Pos:   pos,
			State: world.BlockState{ID: "minecraft:chest", Container: true},
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should look the memory up under the key of the broken block", func() {
		shard := world.MustParseKey("shards:west")
		bank.AddMemory(shard, pos, memory.Memory{})
		bank.Metadata().Integrity.RemoveOnPlayerBlockBreak = true
		loader.Load(bank)

		listener = MakeBuilder().
			WithLoader(loader).
			WithBlockKeyFunc(func(_ world.World, p world.BlockPos) world.Key {
				Expect(p).To(Equal(pos))
				return shard
			}).
			BuildDestructionListener()

		listener.OnPlayerDestroyBlock(broken)

		_, ok := bank.Memory(shard, pos)
		Expect(ok).To(BeFalse())
		_, ok = bank.Memory(world.Overworld, pos)
		Expect(ok).To(BeTrue())
	})

	It("should do nothing without an active bank", func() {
		listener.OnPlayerDestroyBlock(broken)

		_, ok := bank.Memory(world.Overworld, pos)
		Expect(ok).To(BeTrue())
	})

	It("should leave the memory when removal on break is disabled", func() {
		bank.Metadata().Integrity.RemoveOnPlayerBlockBreak = false
		loader.Load(bank)

		listener.OnPlayerDestroyBlock(broken)

		_, ok := bank.Memory(world.Overworld, pos)
		Expect(ok).To(BeTrue())
	})

	It("should remove the memory once when removal on break is enabled", func() {
		bank.Metadata().Integrity.RemoveOnPlayerBlockBreak = true
		loader.Load(bank)

		hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
			Expect(ctx.Pos).To(BeIdenticalTo(HookPosEvict))
			ev := ctx.Detail.(Eviction)
			Expect(ev.Cause).To(Equal(CausePlayerBlockBreak))
			Expect(ev.Pos).To(Equal(pos))
			Expect(ev.Tick).To(Equal(int64(42)))
		}).Times(1)

		listener.OnPlayerDestroyBlock(broken)
		listener.OnPlayerDestroyBlock(broken)

		_, ok := bank.Memory(world.Overworld, pos)
		Expect(ok).To(BeFalse())
	})

	It("should only remove the memory in the broken block's key", func() {
		bank.AddMemory(world.Nether, pos, memory.Memory{})
		loader.Load(bank)
		hook.EXPECT().Func(gomock.Any())

		listener.OnPlayerDestroyBlock(broken)

		_, ok := bank.Memory(world.Nether, pos)
		Expect(ok).To(BeTrue())
	})
})
