package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tungsten/api"
	"github.com/sarchlab/tungsten/core"
	"github.com/sarchlab/tungsten/instr"
	"github.com/sarchlab/tungsten/program"
	"github.com/sarchlab/tungsten/verify"
)

// loadProgram reads a source file, or an instruction listing when the name
// ends in .yaml, and returns it resolved. Listings that arrive resolved must
// pass the lint.
func (o *rootOptions) loadProgram(path string) (instr.Program, error) {
	prog, err := o.loadListing(path)
	if err != nil || !strings.HasSuffix(path, ".yaml") {
		return prog, err
	}

	if err := verify.Check(prog); err != nil {
		return instr.Program{}, errors.Wrapf(err, "%s", path)
	}

	return prog, nil
}

func (o *rootOptions) driver() api.Driver {
	tc := api.ExecToolchain{
		Assembler:      o.cfg.Assembler,
		AssemblerFlags: o.cfg.AssemblerFlags,
		Linker:         o.cfg.Linker,
		LinkerFlags:    o.cfg.LinkerFlags,
	}

	return api.DriverBuilder{}.
		WithToolchain(tc).
		WithEngine(sim.NewSerialEngine()).
		WithFreq(1 * sim.GHz).
		WithTrace(strings.EqualFold(o.cfg.LogLevel, "trace")).
		Build("Driver")
}

func (o *rootOptions) output(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("output") {
		return flag
	}
	return o.cfg.Output
}

func newSimCommand(opts *rootOptions) *cobra.Command {
	var (
		timed bool
		state bool
	)

	cmd := &cobra.Command{
		Use:   "sim FILE",
		Short: "Interpret a program",
		Args:  cobra.ExactArgs(1),
		Run: opts.runFunc(func(cmd *cobra.Command, args []string) error {
			prog, err := opts.loadProgram(args[0])
			if err != nil {
				return err
			}

			if state {
				m, err := core.NewMachine(prog, stdout)
				if err != nil {
					return err
				}
				runErr := m.Run()
				core.PrintState(os.Stderr, m)
				return runErr
			}

			d := opts.driver()
			if !timed {
				return d.Simulate(prog, stdout)
			}

			res, err := d.SimulateTimed(prog, stdout)
			slog.Info("Timed simulation",
				"Cycles", res.Cycles,
				"Time", res.Seconds*1e9,
			)
			return err
		}),
	}

	cmd.Flags().BoolVar(&timed, "timed", false, "run on the cycle-driven core")
	cmd.Flags().BoolVar(&state, "state", false, "print the final machine state to stderr")

	return cmd
}

func newBuildCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build FILE",
		Short: "Compile a program to a native executable",
		Args:  cobra.ExactArgs(1),
		Run: opts.runFunc(func(cmd *cobra.Command, args []string) error {
			prog, err := opts.loadProgram(args[0])
			if err != nil {
				return err
			}

			_, err = opts.driver().Build(context.Background(), prog, opts.output(cmd, output))
			return err
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "executable path")

	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Compile a program and run the executable",
		Args:  cobra.ExactArgs(1),
		Run: opts.runFunc(func(cmd *cobra.Command, args []string) error {
			prog, err := opts.loadProgram(args[0])
			if err != nil {
				return err
			}

			return opts.driver().Run(context.Background(), prog,
				opts.output(cmd, output), stdout, os.Stderr)
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "executable path")

	return cmd
}

func newIRCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ir FILE",
		Short: "Print the resolved instruction listing",
		Args:  cobra.ExactArgs(1),
		Run: opts.runFunc(func(cmd *cobra.Command, args []string) error {
			prog, err := opts.loadProgram(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "table":
				program.WriteListing(stdout, prog)
				return nil
			case "yaml":
				return program.WriteYAML(stdout, prog)
			}
			return errors.Errorf("unknown format %q", format)
		}),
	}

	cmd.Flags().StringVar(&format, "format", "table", "listing format: table or yaml")

	return cmd
}

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	var (
		native   bool
		output   string
		maxSteps uint64
		report   string
	)

	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Lint a program and compare backends",
		Args:  cobra.ExactArgs(1),
		Run: opts.runFunc(func(cmd *cobra.Command, args []string) error {
			prog, err := opts.loadListing(args[0])
			if err != nil {
				return err
			}

			vOpts := verify.Options{
				MaxSteps: maxSteps,
				Native:   native,
				Driver:   opts.driver(),
			}
			if cmd.Flags().Changed("output") {
				vOpts.Output = output
			}

			r := verify.GenerateReport(context.Background(), prog, vOpts)
			r.WriteReport(stdout)

			if report != "" {
				if err := r.SaveReportToFile(report); err != nil {
					return err
				}
			}

			if !r.OK() {
				return errors.New("verification failed")
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&native, "native", false, "also build and run the program natively")
	cmd.Flags().StringVarP(&output, "output", "o", "", "executable path for the native run")
	cmd.Flags().Uint64Var(&maxSteps, "max-steps", verify.DefaultMaxSteps, "interpreter step budget")
	cmd.Flags().StringVar(&report, "report", "", "also write the report to this file")

	return cmd
}

// loadListing is loadProgram without the lint gate, so that verify can report
// on broken listings.
func (o *rootOptions) loadListing(path string) (instr.Program, error) {
	if !strings.HasSuffix(path, ".yaml") {
		return program.LoadProgramFile(path, program.BuildOptions{
			CompatDuplAsDump: o.cfg.CompatDuplAsDump,
		})
	}

	prog, err := program.LoadProgramFileFromYAML(path)
	if err != nil {
		return instr.Program{}, err
	}
	if !prog.Resolved {
		if err := program.Resolve(&prog); err != nil {
			return instr.Program{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	return prog, nil
}
