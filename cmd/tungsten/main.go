// Command tungsten compiles and runs stack language programs.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tungsten/config"
)

var stdout = bufio.NewWriter(os.Stdout)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	compatDupl bool
	verbose    bool

	cfg config.Config
}

func main() {
	atexit.Register(func() {
		stdout.Flush()
	})

	if err := newRootCommand().Execute(); err != nil {
		atexit.Exit(2)
	}

	atexit.Exit(0)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "tungsten",
		Short:        "Compile and run stack language programs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&opts.compatDupl, "compat-dupl", false, "treat DUPL as DUMP")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print stack traces with errors")

	cmd.AddCommand(
		newSimCommand(opts),
		newBuildCommand(opts),
		newRunCommand(opts),
		newIRCommand(opts),
		newVerifyCommand(opts),
	)

	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	o.cfg = config.Default()
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return errors.Wrap(err, "loading configuration")
		}
		o.cfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		o.cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		o.cfg.LogFormat = o.logFormat
	}
	if flags.Changed("compat-dupl") {
		o.cfg.CompatDuplAsDump = o.compatDupl
	}

	logger, err := config.NewLogger(o.cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	return nil
}

// runFunc adapts a command body so that a failure is reported once and the
// process exits through atexit, flushing buffered output first.
func (o *rootOptions) runFunc(
	run func(cmd *cobra.Command, args []string) error,
) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		err := run(cmd, args)
		if err == nil {
			return
		}

		stdout.Flush()

		msg := errorMessage(err)
		if o.verbose {
			msg = detailedError(err)
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)

		atexit.Exit(1)
	}
}

func detailedError(err error) string {
	msg := errorMessage(err)
	hasStack := false
	for {
		stackErr, ok := err.(interface{ StackTrace() errors.StackTrace })
		if !ok {
			break
		}

		msg += "\n"
		if hasStack {
			msg += "CAUSED BY...\n"
		}
		hasStack = true

		for _, f := range stackErr.StackTrace() {
			msg += fmt.Sprintf("%+v\n", f)
		}

		cause := errors.Cause(err)
		if cause == err || cause == nil {
			break
		}
		err = cause
	}

	return msg
}

func errorMessage(err error) string {
	if multi, ok := err.(*multierror.Error); ok {
		wr := multi.WrappedErrors()
		if len(wr) == 1 {
			return errorMessage(wr[0])
		}
		msg := fmt.Sprintf("%d errors occurred:", len(wr))
		for i, werr := range wr {
			msg += fmt.Sprintf("\n    %d) %s", i+1, errorMessage(werr))
		}
		return msg
	}

	return err.Error()
}
