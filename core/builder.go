package core

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	out    io.Writer
	trace  bool
}

// NewBuilder returns a builder with a 1 GHz clock that discards output.
func NewBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
		out:  io.Discard,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithOutput sets where DUMP writes.
func (b Builder) WithOutput(out io.Writer) Builder {
	b.out = out
	return b
}

// WithTrace logs every executed instruction at trace level.
func (b Builder) WithTrace(on bool) Builder {
	b.trace = on
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.engine == nil {
		panic("core builder requires an engine")
	}

	c := &Core{
		out:   b.out,
		trace: b.trace,
	}
	if c.out == nil {
		c.out = io.Discard
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
