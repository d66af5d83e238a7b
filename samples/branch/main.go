package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/tungsten/asm"
	"github.com/sarchlab/tungsten/program"
)

const source = `
1 2 > IF
  1 DUMP
ELSE
  2 DUMP
END
`

func main() {
	prog, err := program.LoadProgram("branch.tn", strings.NewReader(source), program.BuildOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	program.WriteListing(os.Stdout, prog)

	if err := asm.Generate(os.Stdout, prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
