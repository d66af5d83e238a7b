package core

import (
	"io"

	"github.com/sarchlab/tungsten/instr"
)

// Machine interprets a resolved program directly.
type Machine struct {
	state coreState
	emu   instEmulator
	trace bool
}

// NewMachine prepares a machine that writes DUMP output to out.
func NewMachine(prog instr.Program, out io.Writer) (*Machine, error) {
	if !prog.Resolved {
		return nil, ErrUnresolved
	}

	if out == nil {
		out = io.Discard
	}

	return &Machine{state: newCoreState(prog, out)}, nil
}

// SetTrace turns per-instruction trace logging on or off.
func (m *Machine) SetTrace(on bool) {
	m.trace = on
}

// Step executes one instruction. Stepping a halted machine is a no-op.
func (m *Machine) Step() error {
	if m.state.halted() {
		return nil
	}

	ip := m.state.IP
	inst := m.state.Code[ip]

	if m.trace {
		Trace("Step", "IP", ip, "Op", inst.Op, "Imm", inst.Imm, "Depth", len(m.state.Stack))
	}

	if err := m.emu.RunInst(&m.state); err != nil {
		return &Fault{Addr: ip, Op: inst.Op, Err: err}
	}

	m.state.Steps++

	return nil
}

// Run executes until the instruction pointer falls off the end of the
// program or a fault occurs. A program that never terminates keeps Run busy
// forever.
func (m *Machine) Run() error {
	for !m.state.halted() {
		if err := m.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Halted reports whether the instruction pointer reached the end.
func (m *Machine) Halted() bool {
	return m.state.halted()
}

// IP returns the address of the next instruction.
func (m *Machine) IP() int {
	return m.state.IP
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 {
	return m.state.Steps
}

// Stack returns a copy of the operand stack, bottom first.
func (m *Machine) Stack() []int64 {
	return append([]int64(nil), m.state.Stack...)
}

// Memory returns the static memory region.
func (m *Machine) Memory() []byte {
	return m.state.Memory
}
