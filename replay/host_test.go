package replay

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/chesttrack/hooking"
	"github.com/sarchlab/chesttrack/integrity"
	"github.com/sarchlab/chesttrack/timing"
	"github.com/sarchlab/chesttrack/world"
)

func run(doc string) *Host {
	s, err := ParseScenario([]byte(doc))
	Expect(err).ToNot(HaveOccurred())

	engine := timing.NewSerialEngine()
	h, err := NewHost(engine, s)
	Expect(err).ToNot(HaveOccurred())
	Expect(h.Start()).To(Succeed())
	Expect(engine.Run()).To(Succeed())
	Expect(h.Err()).ToNot(HaveOccurred())

	return h
}

var _ = Describe("Host", func() {
	It("should replay the basic scenario", func() {
		s, err := LoadScenario("testdata/basic.yaml")
		Expect(err).ToNot(HaveOccurred())

		engine := timing.NewSerialEngine()
		h, err := NewHost(engine, s)
		Expect(err).ToNot(HaveOccurred())

		var actions []string
		h.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			actions = append(actions, ctx.Item.(Action).Kind())
		}))

		Expect(h.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(h.Err()).ToNot(HaveOccurred())
		Expect(h.Check()).To(BeEmpty())
		Expect(actions).To(Equal([]string{"open", "break"}))

		stats := h.Stats()
		Expect(stats.Ticks).To(Equal(int64(1000)))
		Expect(stats.Sweeps).To(Equal(1))
		Expect(stats.Remaining).To(Equal(3))
		Expect(stats.Evictions).To(Equal(map[integrity.Cause]int{
			integrity.CauseExpired:          1,
			integrity.CausePeriodicCheck:    1,
			integrity.CausePlayerBlockBreak: 1,
		}))

		bank, found, err := h.Storage().Load("singleplayer-new_world")
		Expect(err).ToNot(HaveOccurred())
		Expect(found).To(BeTrue())
		m, ok := bank.Memory(world.Overworld, world.Pos(20, 64, 10))
		Expect(ok).To(BeTrue())
		Expect(m.Name).To(Equal("loot"))
		Expect(m.InGameTimestamp).To(Equal(int64(50)))
	})

	It("should stop early and still save the bank", func() {
		s, err := ParseScenario([]byte(`
coordinate: {kind: singleplayer, id: w}
duration: 100
bank:
  memories:
    - {key: minecraft:overworld, pos: [0, 0, 0]}
`))
		Expect(err).ToNot(HaveOccurred())

		engine := timing.NewSerialEngine()
		h, err := NewHost(engine, s)
		Expect(err).ToNot(HaveOccurred())

		h.Stop()
		Expect(h.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(h.Stats().Ticks).To(Equal(int64(1)))
		Expect(h.Stats().Remaining).To(Equal(1))
		Expect(h.Storage().Len()).To(Equal(1))
	})

	It("should report unmet expectations", func() {
		h := run(`
coordinate: {kind: singleplayer, id: w}
duration: 5
bank:
  memories:
    - {key: minecraft:overworld, pos: [0, 0, 0]}
expect:
  remaining: 0
  evicted: {expired: 2, exploded: 1}
`)

		Expect(h.Check()).To(ConsistOf(
			"remaining: expected 0, got 1",
			"evicted expired: expected 2, got 0",
			ContainSubstring("exploded"),
		))
	})

	It("should use the shard provider of matching servers", func() {
		h := run(`
coordinate: {kind: multiplayer, id: eu.islands.example.com}
duration: 700
player: [-50, 64, 0]
providers:
  - name: islands
    namespace: islands
    servers: 'islands\.example\.com$'
    shards: [{name: west, min_x: -1000}, {name: east, min_x: 0}]
bank:
  memories:
    - {key: islands:west, pos: [-40, 64, 0]}
    - {key: islands:east, pos: [40, 64, 0]}
`)

		Expect(h.Stats().Evictions[integrity.CausePeriodicCheck]).To(Equal(1))
		Expect(h.Stats().Remaining).To(Equal(1))

		bank, found, _ := h.Storage().Load("multiplayer-eu.islands.example.com-islands")
		Expect(found).To(BeTrue())
		Expect(bank.Count(world.Key{Namespace: "islands", Path: "east"})).
			To(Equal(1))
	})

	It("should abandon a sweep when the dimension changes", func() {
		h := run(`
coordinate: {kind: singleplayer, id: w}
duration: 700
player: [0, 64, 0]
world:
  unloaded: [[0, 64, 0], [1, 64, 0], [2, 64, 0]]
bank:
  memories:
    - {key: minecraft:overworld, pos: [0, 64, 0]}
    - {key: minecraft:overworld, pos: [1, 64, 0]}
    - {key: minecraft:overworld, pos: [2, 64, 0]}
actions:
  - {at: 600, dimension: minecraft:the_nether}
`)

		Expect(h.Stats().Resets).To(Equal(1))
		Expect(h.Stats().Sweeps).To(Equal(0))
		Expect(h.Stats().Remaining).To(Equal(3))
	})

	It("should stop sweeping after leaving", func() {
		h := run(`
coordinate: {kind: singleplayer, id: w}
duration: 800
player: [0, 64, 0]
bank:
  memories:
    - {key: minecraft:overworld, pos: [0, 64, 0]}
actions:
  - {at: 10, leave: true}
  - {at: 700, join: {kind: singleplayer, id: other}}
`)

		Expect(h.Stats().Evictions).To(BeEmpty())

		bank, found, _ := h.Storage().Load("singleplayer-w")
		Expect(found).To(BeTrue())
		Expect(bank.Count(world.Overworld)).To(Equal(1))
		Expect(h.Storage().Len()).To(Equal(2))
	})

	It("should keep memories of unloaded chunks", func() {
		h := run(`
coordinate: {kind: singleplayer, id: w}
duration: 700
player: [0, 64, 0]
bank:
  memories:
    - {key: minecraft:overworld, pos: [3, 64, 0]}
actions:
  - {at: 1, unload: [3, 64, 0]}
`)

		Expect(h.Stats().Evictions).To(BeEmpty())
		Expect(h.Stats().Sweeps).To(Equal(1))
	})

	It("should fail when opening a block that is not a container", func() {
		s, err := ParseScenario([]byte(`
coordinate: {kind: singleplayer, id: w}
duration: 20
player: [0, 64, 0]
actions:
  - {at: 5, open: {pos: [3, 64, 3], name: loot}}
`))
		Expect(err).ToNot(HaveOccurred())

		engine := timing.NewSerialEngine()
		h, err := NewHost(engine, s)
		Expect(err).ToNot(HaveOccurred())
		Expect(h.Start()).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(h.Err()).To(MatchError(
			ContainSubstring("tick 5: open: no container to remember at 3, 64, 3")))
	})
})
