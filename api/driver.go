// Package api defines the driver API that runs programs on the interpreter,
// the simulated core, or as native executables.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tungsten/asm"
	"github.com/sarchlab/tungsten/core"
	"github.com/sarchlab/tungsten/instr"
)

// Driver provides the interface to run resolved programs.
type Driver interface {
	// Simulate interprets the program, writing DUMP output to out.
	Simulate(prog instr.Program, out io.Writer) error

	// SimulateTimed runs the program on a core driven by the simulation
	// engine, one instruction per cycle.
	SimulateTimed(prog instr.Program, out io.Writer) (TimedResult, error)

	// Build generates assembly for the program and turns it into an
	// executable at output.
	Build(ctx context.Context, prog instr.Program, output string) (Artifacts, error)

	// Run builds the program and executes the result.
	Run(
		ctx context.Context,
		prog instr.Program,
		output string,
		stdout, stderr io.Writer,
	) error
}

// Artifacts names the files written by a build.
type Artifacts struct {
	Asm    string
	Object string
	Binary string
}

// TimedResult summarizes a timed simulation.
type TimedResult struct {
	Cycles  uint64
	Steps   uint64
	Seconds float64
}

type driverImpl struct {
	name      string
	toolchain Toolchain
	engine    sim.Engine
	freq      sim.Freq
	trace     bool

	runs int
}

func (d *driverImpl) Simulate(prog instr.Program, out io.Writer) error {
	m, err := core.NewMachine(prog, out)
	if err != nil {
		return err
	}
	m.SetTrace(d.trace)

	if err := m.Run(); err != nil {
		return err
	}

	slog.Debug("Simulate", "Source", prog.Source, "Steps", m.Steps())

	return nil
}

func (d *driverImpl) SimulateTimed(
	prog instr.Program,
	out io.Writer,
) (TimedResult, error) {
	engine := d.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	d.runs++
	c := core.NewBuilder().
		WithEngine(engine).
		WithFreq(d.freq).
		WithOutput(out).
		WithTrace(d.trace).
		Build(d.coreName())

	if err := c.MapProgram(prog); err != nil {
		return TimedResult{}, err
	}

	if err := engine.Run(); err != nil {
		return TimedResult{}, errors.Wrap(err, "simulation engine")
	}

	res := TimedResult{
		Cycles:  c.Cycles(),
		Steps:   c.Machine().Steps(),
		Seconds: float64(engine.CurrentTime()),
	}

	if err := c.Err(); err != nil {
		return res, err
	}

	slog.Debug("SimulateTimed",
		"Source", prog.Source,
		"Cycles", res.Cycles,
		"Time", res.Seconds*1e9,
	)

	return res, nil
}

func (d *driverImpl) coreName() string {
	if d.runs == 1 {
		return d.name + ".Core"
	}
	return fmt.Sprintf("%s.Core[%d]", d.name, d.runs-1)
}

func (d *driverImpl) Build(
	ctx context.Context,
	prog instr.Program,
	output string,
) (Artifacts, error) {
	if !prog.Resolved {
		return Artifacts{}, instr.ErrUnresolved
	}

	art := Artifacts{
		Asm:    output + ".asm",
		Object: output + ".o",
		Binary: output,
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Artifacts{}, errors.Wrapf(err, "creating %s", dir)
		}
	}

	if err := writeAsm(art.Asm, prog); err != nil {
		return Artifacts{}, err
	}
	slog.Info("Generated", "File", art.Asm, "Instructions", prog.Len())

	if err := d.toolchain.Assemble(ctx, art.Asm, art.Object); err != nil {
		return Artifacts{}, errors.Wrapf(err, "assembling %s", art.Asm)
	}
	slog.Info("Assembled", "File", art.Object)

	if err := d.toolchain.Link(ctx, art.Object, art.Binary); err != nil {
		return Artifacts{}, errors.Wrapf(err, "linking %s", art.Object)
	}
	slog.Info("Linked", "File", art.Binary)

	return art, nil
}

func writeAsm(path string, prog instr.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	if err := asm.Generate(f, prog); err != nil {
		f.Close()
		return errors.Wrapf(err, "generating %s", path)
	}

	return errors.Wrapf(f.Close(), "writing %s", path)
}

func (d *driverImpl) Run(
	ctx context.Context,
	prog instr.Program,
	output string,
	stdout, stderr io.Writer,
) error {
	art, err := d.Build(ctx, prog, output)
	if err != nil {
		return err
	}

	if err := d.toolchain.Execute(ctx, executablePath(art.Binary), stdout, stderr); err != nil {
		return errors.Wrapf(err, "running %s", art.Binary)
	}

	return nil
}

// executablePath makes a bare file name resolve in the working directory
// rather than through PATH.
func executablePath(p string) string {
	if filepath.IsAbs(p) || filepath.Dir(p) != "." {
		return p
	}
	return "." + string(filepath.Separator) + p
}
