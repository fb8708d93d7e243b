package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("TickingComponent", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
		ticker   *MockTicker
		tc       *TickingComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
		ticker = NewMockTicker(mockCtrl)
		tc = NewTickingComponent("Host", engine, ticker)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should tick every tick while making progress", func() {
		var ticks []GameTime
		ticker.EXPECT().Tick().DoAndReturn(func() bool {
			ticks = append(ticks, engine.Now())
			return len(ticks) < 5
		}).Times(5)

		tc.TickNow()
		Expect(engine.Run()).To(Succeed())

		Expect(ticks).To(Equal([]GameTime{0, 1, 2, 3, 4}))
		Expect(tc.Name()).To(Equal("Host"))
	})

	It("should not schedule the same tick twice", func() {
		ticker.EXPECT().Tick().Return(false).Times(1)

		tc.TickLater()
		tc.TickLater()
		tc.TickNow()

		Expect(engine.Run()).To(Succeed())
		Expect(engine.Now()).To(Equal(GameTime(1)))
	})

	It("should schedule secondary ticks", func() {
		tc = NewSecondaryTickingComponent("Late", engine, ticker)
		ticker.EXPECT().Tick().Return(false)

		tc.TickLater()

		Expect(engine.secondaryQueue.Len()).To(Equal(1))
		Expect(engine.Run()).To(Succeed())
	})
})
