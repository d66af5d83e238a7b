package core

import (
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/tungsten/instr"
)

// MemBase is the value MEMORY pushes in the interpreter: the offset of the
// first byte of the static memory region.
const MemBase int64 = 0

type coreState struct {
	IP     int
	Stack  []int64
	Memory []byte
	Code   []instr.Instruction
	Out    io.Writer
	Steps  uint64

	dumpBuf []byte
}

func newCoreState(prog instr.Program, out io.Writer) coreState {
	return coreState{
		Stack:   make([]int64, 0, 64),
		Memory:  make([]byte, instr.MemCapacity),
		Code:    prog.Instructions,
		Out:     out,
		dumpBuf: make([]byte, 0, 24),
	}
}

func (s *coreState) halted() bool {
	return s.IP >= len(s.Code)
}

type instEmulator struct {
}

// RunInst executes the instruction at the instruction pointer and moves the
// pointer. The state is left untouched beyond the failed pop when an error is
// returned.
func (i instEmulator) RunInst(state *coreState) error {
	inst := state.Code[state.IP]

	var err error
	switch inst.Op {
	case instr.Push:
		state.push(inst.Imm)
	case instr.Plus:
		err = i.runBinary(state, func(a, b int64) int64 { return b + a })
	case instr.Minus:
		err = i.runBinary(state, func(a, b int64) int64 { return b - a })
	case instr.Equal:
		err = i.runBinary(state, func(a, b int64) int64 { return boolToInt(b == a) })
	case instr.GreaterThan:
		err = i.runBinary(state, func(a, b int64) int64 { return boolToInt(b > a) })
	case instr.True:
		state.push(1)
	case instr.False:
		state.push(0)
	case instr.Dupl:
		err = i.runDupl(state)
	case instr.Mem:
		state.push(MemBase)
	case instr.Dump:
		err = i.runDump(state)
	case instr.If, instr.Do:
		return i.runCondJump(state, inst)
	case instr.Else, instr.End:
		return i.jump(state, inst.Imm)
	case instr.While:
	default:
		return fmt.Errorf("unknown operation %v", inst.Op)
	}

	if err != nil {
		return err
	}

	state.IP++

	return nil
}

func (i instEmulator) runBinary(state *coreState, f func(a, b int64) int64) error {
	a, err := state.pop()
	if err != nil {
		return err
	}

	b, err := state.pop()
	if err != nil {
		return err
	}

	state.push(f(a, b))

	return nil
}

func (i instEmulator) runDupl(state *coreState) error {
	a, err := state.pop()
	if err != nil {
		return err
	}

	state.push(a)
	state.push(a)

	return nil
}

func (i instEmulator) runDump(state *coreState) error {
	a, err := state.pop()
	if err != nil {
		return err
	}

	buf := strconv.AppendInt(state.dumpBuf[:0], a, 10)
	buf = append(buf, '\n')
	state.dumpBuf = buf

	_, err = state.Out.Write(buf)

	return err
}

func (i instEmulator) runCondJump(state *coreState, inst instr.Instruction) error {
	a, err := state.pop()
	if err != nil {
		return err
	}

	if a == 0 {
		return i.jump(state, inst.Imm)
	}

	state.IP++

	return nil
}

func (i instEmulator) jump(state *coreState, target int64) error {
	if target < 0 || target > int64(len(state.Code)) {
		return ErrBadJump
	}

	state.IP = int(target)

	return nil
}

func (s *coreState) push(v int64) {
	s.Stack = append(s.Stack, v)
}

func (s *coreState) pop() (int64, error) {
	if len(s.Stack) == 0 {
		return 0, ErrStackUnderflow
	}

	v := s.Stack[len(s.Stack)-1]
	s.Stack = s.Stack[:len(s.Stack)-1]

	return v, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
