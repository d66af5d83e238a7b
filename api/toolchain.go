package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Toolchain turns generated assembly into a running executable.
type Toolchain interface {
	// Assemble translates the assembly file at asmPath into an object file.
	Assemble(ctx context.Context, asmPath, objPath string) error

	// Link produces an executable from an object file.
	Link(ctx context.Context, objPath, binPath string) error

	// Execute runs an executable, forwarding its standard streams.
	Execute(ctx context.Context, binPath string, stdout, stderr io.Writer) error
}

// ToolError reports an external program that could not be started or exited
// with a nonzero status.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Tool, strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s: exit status %d", msg, e.ExitCode)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}

	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ExecToolchain runs the assembler and linker as child processes.
type ExecToolchain struct {
	Assembler      string
	AssemblerFlags []string
	Linker         string
	LinkerFlags    []string
}

// NewExecToolchain returns the NASM and ld toolchain for 64-bit ELF.
func NewExecToolchain() ExecToolchain {
	return ExecToolchain{
		Assembler:      "nasm",
		AssemblerFlags: []string{"-felf64"},
		Linker:         "ld",
	}
}

// Assemble runs the assembler.
func (t ExecToolchain) Assemble(ctx context.Context, asmPath, objPath string) error {
	args := append(append([]string{}, t.AssemblerFlags...), asmPath, "-o", objPath)
	return runTool(ctx, t.Assembler, args, nil, nil)
}

// Link runs the linker.
func (t ExecToolchain) Link(ctx context.Context, objPath, binPath string) error {
	args := append(append([]string{}, t.LinkerFlags...), objPath, "-o", binPath)
	return runTool(ctx, t.Linker, args, nil, nil)
}

// Execute runs the built program.
func (t ExecToolchain) Execute(
	ctx context.Context,
	binPath string,
	stdout, stderr io.Writer,
) error {
	return runTool(ctx, binPath, nil, stdout, stderr)
}

func runTool(
	ctx context.Context,
	tool string,
	args []string,
	stdout, stderr io.Writer,
) error {
	slog.Debug("Exec", "Tool", tool, "Args", args)

	var captured bytes.Buffer

	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = stdout
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, &captured)
	} else {
		cmd.Stderr = &captured
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	toolErr := &ToolError{
		Tool:     tool,
		Args:     args,
		ExitCode: -1,
		Stderr:   captured.String(),
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}

	return toolErr
}
