package program

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tungsten/instr"
)

func load(src string) (instr.Program, error) {
	return LoadProgram("test.tn", strings.NewReader(src), BuildOptions{})
}

func imms(prog instr.Program) []int64 {
	out := make([]int64, prog.Len())
	for i, inst := range prog.Instructions {
		out[i] = inst.Imm
	}
	return out
}

var _ = Describe("Resolver", func() {
	It("should leave straight-line code untouched", func() {
		prog, err := load("1 2 + DUMP")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Resolved).To(BeTrue())
		Expect(imms(prog)).To(Equal([]int64{1, 2, 0, 0}))
	})

	It("should link IF/END", func() {
		//                 0 1   2  3 4    5
		prog, err := load("1 IF  7 DUMP END 8")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.At(1)).To(Equal(instr.Instruction{Op: instr.If, Imm: 4}))
		Expect(prog.At(4)).To(Equal(instr.Instruction{Op: instr.End, Imm: 5}))
	})

	It("should link IF/ELSE/END", func() {
		//                 0 1 2 3  4 5    6    7 8    9
		prog, err := load("1 2 > IF 1 DUMP ELSE 2 DUMP END")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.At(3).Imm).To(Equal(int64(7)))
		Expect(prog.At(6).Imm).To(Equal(int64(9)))
		Expect(prog.At(9).Imm).To(Equal(int64(10)))
	})

	It("should link WHILE/DO/END", func() {
		//                 0  1     2    3 4 5  6    7    8 9 10
		prog, err := load("10 WHILE DUPL 0 > DO DUPL DUMP 1 - END")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.At(5)).To(Equal(instr.Instruction{Op: instr.Do, Imm: 11}))
		Expect(prog.At(10)).To(Equal(instr.Instruction{Op: instr.End, Imm: 1}))
		Expect(prog.At(1).Imm).To(BeZero())
	})

	It("should link nested constructs innermost first", func() {
		//        0     1    2  3    4 5     6    7  8    9   10   11
		src := "WHILE TRUE DO TRUE IF 1 DUMP ELSE 2 DUMP END END"
		prog, err := load(src)
		Expect(err).NotTo(HaveOccurred())
		Expect(imms(prog)).To(Equal([]int64{0, 0, 12, 0, 8, 1, 0, 10, 2, 0, 11, 0}))
	})

	It("should refuse to resolve twice", func() {
		prog, err := load("IF END")
		Expect(err).NotTo(HaveOccurred())
		Expect(Resolve(&prog)).To(MatchError(ErrAlreadyResolved))
	})

	DescribeTable("structure errors",
		func(src string, addr int, op instr.Op, reason string) {
			_, err := load(src)

			var structErr *StructureError
			Expect(errors.As(err, &structErr)).To(BeTrue(), "error: %v", err)
			Expect(structErr.Addr).To(Equal(addr))
			Expect(structErr.Op).To(Equal(op))
			Expect(structErr.Reason).To(ContainSubstring(reason))
		},
		Entry("unterminated IF", "IF 1 DUMP", 0, instr.If, "unterminated"),
		Entry("lone END", "END", 0, instr.End, "without an open block"),
		Entry("lone ELSE", "1 ELSE", 1, instr.Else, "without an open IF"),
		Entry("lone DO", "TRUE DO", 1, instr.Do, "without an open WHILE"),
		Entry("DO closing IF", "TRUE IF TRUE DO END END", 3, instr.Do, "cannot close IF"),
		Entry("ELSE closing WHILE", "WHILE ELSE END", 1, instr.Else, "cannot close WHILE"),
		Entry("END closing WHILE", "WHILE TRUE END", 2, instr.End, "cannot close WHILE"),
		Entry("double ELSE", "1 IF ELSE ELSE END", 3, instr.Else, "cannot close ELSE"),
		Entry("innermost unterminated", "WHILE TRUE DO 1 IF END", 2, instr.Do, "unterminated"),
	)

	It("should name the file in a wrapped structure error", func() {
		_, err := load("END")
		Expect(err).To(MatchError(ContainSubstring("test.tn: address 0 (END)")))
	})
})

var _ = Describe("Listing", func() {
	It("should survive a YAML round trip", func() {
		prog, err := load("10 WHILE DUPL 0 > DO DUPL DUMP 1 - END")
		Expect(err).NotTo(HaveOccurred())

		var sb strings.Builder
		Expect(WriteYAML(&sb, prog)).To(Succeed())
		Expect(sb.String()).To(ContainSubstring("op: WHILE"))

		back, err := ReadYAML(strings.NewReader(sb.String()))
		Expect(err).NotTo(HaveOccurred())
		Expect(back).To(Equal(prog))
	})

	It("should reject listings with gaps", func() {
		src := "resolved: true\ninstructions:\n  - {addr: 0, op: TRUE, imm: 0}\n  - {addr: 2, op: DUMP, imm: 0}\n"
		_, err := ReadYAML(strings.NewReader(src))
		Expect(err).To(MatchError(ContainSubstring("entry 1 has address 2")))
	})

	It("should mark fallthrough and loop edges in the table", func() {
		prog, err := load("10 WHILE DUPL 0 > DO DUPL DUMP 1 - END 1 IF END")
		Expect(err).NotTo(HaveOccurred())

		var sb strings.Builder
		WriteListing(&sb, prog)
		out := sb.String()
		Expect(out).To(ContainSubstring("test.tn (resolved)"))
		Expect(out).To(ContainSubstring("loop back"))
		Expect(out).To(ContainSubstring("fallthrough"))
		Expect(out).To(ContainSubstring("GREATER_THAN"))
	})
})
