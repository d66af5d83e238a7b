package core_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tungsten/core"
	"github.com/sarchlab/tungsten/instr"
	"github.com/sarchlab/tungsten/program"
)

func mustLoad(src string) instr.Program {
	prog, err := program.LoadProgram("test.tn", strings.NewReader(src), program.BuildOptions{})
	Expect(err).NotTo(HaveOccurred())
	return prog
}

func interpret(src string) (string, *core.Machine, error) {
	var out bytes.Buffer
	m, err := core.NewMachine(mustLoad(src), &out)
	Expect(err).NotTo(HaveOccurred())
	err = m.Run()
	return out.String(), m, err
}

var _ = Describe("Machine", func() {
	It("should add two numbers", func() {
		out, m, err := interpret("1 2 + DUMP")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("3\n"))
		Expect(m.Halted()).To(BeTrue())
		Expect(m.Steps()).To(Equal(uint64(4)))
		Expect(m.Stack()).To(BeEmpty())
	})

	It("should take the ELSE branch on a false condition", func() {
		out, _, err := interpret("1 2 > IF 1 DUMP ELSE 2 DUMP END")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("2\n"))
	})

	It("should take the IF branch on a true condition", func() {
		out, _, err := interpret("2 1 > IF 1 DUMP ELSE 2 DUMP END 3 DUMP")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("1\n3\n"))
	})

	It("should dump once per completed loop iteration", func() {
		out, m, err := interpret("3 WHILE DUPL 0 > DO DUPL DUMP 1 - END")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("3\n2\n1\n"))
		Expect(m.Stack()).To(Equal([]int64{0}))
	})

	It("should skip a loop whose condition is false up front", func() {
		out, _, err := interpret("WHILE FALSE DO 1 DUMP END 9 DUMP")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("9\n"))
	})

	It("should run nested loops", func() {
		src := `
			2 WHILE DUPL 0 > DO
			  2 WHILE DUPL 0 > DO
			    DUPL DUMP 1 -
			  END
			  0 =? IF 100 DUMP END
			  1 -
			END`
		out, _, err := interpret(src)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("2\n1\n100\n2\n1\n100\n"))
	})

	It("should subtract in stack order", func() {
		out, _, err := interpret("10 3 - DUMP 3 10 - DUMP")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("7\n-7\n"))
	})

	It("should push the memory base", func() {
		out, _, err := interpret("MEMORY DUMP")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(fmt.Sprintf("%d\n", core.MemBase)))
	})

	It("should stop at the first underflow", func() {
		out, m, err := interpret("5 DUMP DUMP 6 DUMP")
		Expect(out).To(Equal("5\n"))

		var fault *core.Fault
		Expect(errors.As(err, &fault)).To(BeTrue())
		Expect(fault.Addr).To(Equal(2))
		Expect(fault.Op).To(Equal(instr.Dump))
		Expect(errors.Is(err, core.ErrStackUnderflow)).To(BeTrue())
		Expect(m.Halted()).To(BeFalse())
		Expect(m.IP()).To(Equal(2))
	})

	It("should fault when IF has no condition", func() {
		_, _, err := interpret("IF END")
		Expect(err).To(MatchError(core.ErrStackUnderflow))
	})

	It("should run an empty program", func() {
		out, m, err := interpret("// nothing here")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
		Expect(m.Halted()).To(BeTrue())
	})

	It("should refuse unresolved programs", func() {
		tokens, err := program.Lex("u.tn", strings.NewReader("1 IF END"))
		Expect(err).NotTo(HaveOccurred())
		prog, err := program.Build(tokens, program.BuildOptions{})
		Expect(err).NotTo(HaveOccurred())

		_, err = core.NewMachine(prog, nil)
		Expect(err).To(MatchError(core.ErrUnresolved))
	})

	It("should render its state", func() {
		m, err := core.NewMachine(mustLoad("4 5 6"), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Run()).To(Succeed())

		var sb strings.Builder
		core.PrintState(&sb, m)
		Expect(sb.String()).To(ContainSubstring("State@3"))
		Expect(sb.String()).To(ContainSubstring("halted"))
		Expect(sb.String()).To(ContainSubstring("6"))
	})
})
