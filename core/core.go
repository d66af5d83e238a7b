package core

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tungsten/instr"
)

// Core runs a resolved program on the simulation engine, one instruction per
// cycle.
type Core struct {
	*sim.TickingComponent

	out     io.Writer
	trace   bool
	machine *Machine

	cycles uint64
	err    error
}

// MapProgram sets the program that the core needs to run and schedules the
// first tick.
func (c *Core) MapProgram(prog instr.Program) error {
	m, err := NewMachine(prog, c.out)
	if err != nil {
		return err
	}
	m.SetTrace(c.trace)

	c.machine = m
	c.cycles = 0
	c.err = nil

	Trace("MapProgram",
		"Core", c.Name(),
		"Source", prog.Source,
		"Length", prog.Len(),
	)

	if !m.Halted() {
		c.TickNow()
	}

	return nil
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.machine == nil || c.err != nil || c.machine.Halted() {
		return false
	}

	ip := c.machine.IP()
	if err := c.machine.Step(); err != nil {
		c.err = err
		Trace("Fault",
			"Core", c.Name(),
			"Time", float64(c.Engine.CurrentTime()*1e9),
			"IP", ip,
			"Error", err.Error(),
		)
		return false
	}

	c.cycles++

	if c.machine.Halted() {
		Trace("Halt",
			"Core", c.Name(),
			"Time", float64(c.Engine.CurrentTime()*1e9),
			"Cycles", c.cycles,
		)
		return false
	}

	return true
}

// Cycles returns the number of cycles that executed an instruction.
func (c *Core) Cycles() uint64 {
	return c.cycles
}

// Err returns the fault that stopped the core, if any.
func (c *Core) Err() error {
	return c.err
}

// Halted reports whether the mapped program ran to completion.
func (c *Core) Halted() bool {
	return c.machine != nil && c.machine.Halted()
}

// Machine exposes the interpreter state of the core.
func (c *Core) Machine() *Machine {
	return c.machine
}
