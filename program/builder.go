package program

import (
	"strconv"

	"github.com/sarchlab/tungsten/instr"
)

// BuildOptions tunes how words are mapped to operations.
type BuildOptions struct {
	// CompatDuplAsDump maps DUPL to DUMP, as the first releases of the
	// language did. By default DUPL duplicates the top of the stack.
	CompatDuplAsDump bool
}

func (o BuildOptions) isa() *ISA {
	if o.CompatDuplAsDump {
		return compatISA
	}
	return defaultISA
}

// Build maps every token to an instruction. Jump immediates are left at zero;
// the returned program must go through Resolve before it can be executed.
func Build(tokens []Token, opts BuildOptions) (instr.Program, error) {
	isa := opts.isa()

	prog := instr.Program{
		Instructions: make([]instr.Instruction, 0, len(tokens)),
	}
	if len(tokens) > 0 {
		prog.Source = tokens[0].File
	}

	for _, tok := range tokens {
		inst, err := buildInst(isa, tok)
		if err != nil {
			return instr.Program{}, err
		}
		prog.Instructions = append(prog.Instructions, inst)
	}

	return prog, nil
}

func buildInst(isa *ISA, tok Token) (instr.Instruction, error) {
	if op, ok := isa.Lookup(tok.Text); ok {
		return instr.Instruction{Op: op}, nil
	}

	v, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return instr.Instruction{}, &LexError{
			File: tok.File,
			Line: tok.Line,
			Col:  tok.Col,
			Text: tok.Text,
		}
	}

	return instr.Instruction{Op: instr.Push, Imm: v}, nil
}
