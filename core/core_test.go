package core_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tungsten/core"
)

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		out    *bytes.Buffer
		c      *core.Core
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		out = &bytes.Buffer{}
		c = core.NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithOutput(out).
			Build("Core")
	})

	It("should execute one instruction per cycle", func() {
		Expect(c.MapProgram(mustLoad("1 2 + DUMP"))).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(out.String()).To(Equal("3\n"))
		Expect(c.Err()).NotTo(HaveOccurred())
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Cycles()).To(Equal(uint64(4)))
	})

	It("should produce the same output as the interpreter for loops", func() {
		src := "3 WHILE DUPL 0 > DO DUPL DUMP 1 - END"
		Expect(c.MapProgram(mustLoad(src))).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		want, m, err := interpret(src)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal(want))
		Expect(c.Cycles()).To(Equal(m.Steps()))
	})

	It("should stop ticking on a fault", func() {
		Expect(c.MapProgram(mustLoad("1 DUMP DUMP 2 DUMP"))).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(out.String()).To(Equal("1\n"))
		Expect(errors.Is(c.Err(), core.ErrStackUnderflow)).To(BeTrue())
		Expect(c.Halted()).To(BeFalse())
		Expect(c.Cycles()).To(Equal(uint64(2)))
	})

	It("should not tick for an empty program", func() {
		Expect(c.MapProgram(mustLoad(""))).To(Succeed())
		Expect(engine.Run()).To(Succeed())
		Expect(c.Cycles()).To(BeZero())
		Expect(c.Halted()).To(BeTrue())
	})
})
