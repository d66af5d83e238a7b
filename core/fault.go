package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tungsten/instr"
)

var (
	// ErrStackUnderflow is the cause of a fault raised by popping an empty
	// operand stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrBadJump is the cause of a fault raised by a jump outside [0, N].
	ErrBadJump = errors.New("jump target out of range")

	// ErrUnresolved is returned when a program that has not been through the
	// block resolver is handed to a machine.
	ErrUnresolved = instr.ErrUnresolved
)

// Fault is a fatal runtime error. Execution stops at the faulting
// instruction.
type Fault struct {
	Addr int
	Op   instr.Op
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("runtime fault at address %d (%s): %v", f.Addr, f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
