package sim_test

import (
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

var _ = Describe("Engine", func() {
	var (
		cfg    sim.Config
		engine *sim.Engine
	)

	BeforeEach(func() {
		cfg = sim.Config{
			Step:    1,
			EndTime: 3,
			Bodies: []*physics.Body{
				physics.NewBody("a", r2.Vec{X: -1e4}, r2.Vec{}, 1e16),
				physics.NewBody("b", r2.Vec{X: 1e4}, r2.Vec{}, 1e16),
			},
		}
	})

	JustBeforeEach(func() {
		var err error
		engine, err = sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts initialized at t=0", func() {
		Expect(engine.State()).To(Equal(sim.Initialized))
		Expect(engine.Time()).To(BeZero())
		Expect(engine.Len()).To(Equal(2))
	})

	It("moves to stepping on the first pull and terminates at the end time", func() {
		snap, err := engine.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(engine.State()).To(Equal(sim.Stepping))
		Expect(snap.Positions).To(HaveLen(2))

		_, _ = engine.Next()
		_, err = engine.Next()
		Expect(err).NotTo(HaveOccurred())

		_, err = engine.Next()
		Expect(err).To(Equal(io.EOF))
		Expect(engine.State()).To(Equal(sim.Terminated))
		Expect(engine.Time()).To(BeNumerically("==", 3))
	})

	It("never replays a snapshot", func() {
		first, err := engine.Next()
		Expect(err).NotTo(HaveOccurred())
		second, err := engine.Next()
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Step).To(Equal(first.Step + 1))
		Expect(second.Positions[0].X).To(BeNumerically(">", first.Positions[0].X))
	})

	Context("with an unbounded end time", func() {
		BeforeEach(func() {
			cfg.EndTime = sim.Unbounded
		})

		It("keeps producing until the consumer stops", func() {
			pulled := 0
			err := engine.Run(context.Background(), func(sim.Snapshot) bool {
				pulled++
				return pulled < 250
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(pulled).To(Equal(250))
			Expect(engine.State()).To(Equal(sim.Stepping))
		})
	})

	Context("with coincident bodies", func() {
		BeforeEach(func() {
			cfg.Bodies[1].Position = cfg.Bodies[0].Position
		})

		It("fails with a singularity distinct from end of stream", func() {
			_, err := engine.Next()
			Expect(err).To(MatchError(dynamo.ErrNumericalSingularity))
			Expect(err).NotTo(Equal(io.EOF))
			Expect(engine.State()).To(Equal(sim.Failed))
			Expect(engine.Err()).To(Equal(err))
		})

		It("leaves the bodies untouched", func() {
			before := engine.Bodies()
			_, _ = engine.Next()
			Expect(engine.Bodies()).To(Equal(before))
		})
	})

	Context("with an empty system", func() {
		It("rejects the configuration", func() {
			_, err := sim.New(sim.Config{Step: 1, EndTime: 1})
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
		})
	})
})
