package program

import "github.com/sarchlab/tungsten/instr"

var (
	defaultISA = newDefaultISA()
	compatISA  = newCompatISA()
)

// DefaultISA returns the keyword table used when no options are given.
func DefaultISA() *ISA {
	return defaultISA
}

func newDefaultISA() *ISA {
	isa := NewISA("Tungsten")
	registerCommonWords(isa)
	isa.registerNewWord("DUPL", instr.Dupl)
	return isa
}

// newCompatISA keeps the historical mapping of DUPL onto DUMP.
func newCompatISA() *ISA {
	isa := NewISA("Tungsten (compat)")
	registerCommonWords(isa)
	isa.registerNewWord("DUPL", instr.Dump)
	return isa
}

func registerCommonWords(isa *ISA) {
	isa.registerNewWord("+", instr.Plus)
	isa.registerNewWord("-", instr.Minus)
	isa.registerNewWord("=?", instr.Equal)
	isa.registerNewWord(">", instr.GreaterThan)
	isa.registerNewWord("TRUE", instr.True)
	isa.registerNewWord("FALSE", instr.False)
	isa.registerNewWord("IF", instr.If)
	isa.registerNewWord("ELSE", instr.Else)
	isa.registerNewWord("END", instr.End)
	isa.registerNewWord("WHILE", instr.While)
	isa.registerNewWord("DO", instr.Do)
	isa.registerNewWord("MEMORY", instr.Mem)
	isa.registerNewWord("DUMP", instr.Dump)
}
