package api

import (
	"github.com/sarchlab/akita/v4/sim"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	toolchain Toolchain
	engine    sim.Engine
	freq      sim.Freq
	trace     bool
}

// WithToolchain sets the programs used to build native executables.
func (b DriverBuilder) WithToolchain(tc Toolchain) DriverBuilder {
	b.toolchain = tc
	return b
}

// WithEngine sets the engine used by timed simulation. Without one, every
// timed simulation gets its own serial engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the simulated core.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithTrace logs every interpreted instruction at trace level.
func (b DriverBuilder) WithTrace(on bool) DriverBuilder {
	b.trace = on
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	d := &driverImpl{
		name:      name,
		toolchain: b.toolchain,
		engine:    b.engine,
		freq:      b.freq,
		trace:     b.trace,
	}

	if d.toolchain == nil {
		d.toolchain = NewExecToolchain()
	}
	if d.freq == 0 {
		d.freq = 1 * sim.GHz
	}

	return d
}
