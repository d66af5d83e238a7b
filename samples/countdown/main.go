package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tungsten/api"
	"github.com/sarchlab/tungsten/core"
	"github.com/sarchlab/tungsten/program"
)

//go:embed countdown.tn
var source string

func main() {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))

	prog, err := program.LoadProgram("countdown.tn", strings.NewReader(source), program.BuildOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	engine := sim.NewSerialEngine()

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")

	res, err := driver.SimulateTimed(prog, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	fmt.Println("========================")
	fmt.Printf("cycles: %d, time: %.0f ns\n", res.Cycles, res.Seconds*1e9)

	m, err := core.NewMachine(prog, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	core.PrintState(os.Stdout, m)

	atexit.Exit(0)
}
