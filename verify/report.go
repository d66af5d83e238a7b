package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tungsten/api"
	"github.com/sarchlab/tungsten/core"
	"github.com/sarchlab/tungsten/instr"
)

// DefaultMaxSteps bounds the interpreter run of a report.
const DefaultMaxSteps = 10_000_000

// ErrStepLimit is returned when the interpreter exceeds its step budget.
var ErrStepLimit = errors.New("step limit exceeded")

// Options controls which stages GenerateReport runs.
type Options struct {
	// MaxSteps bounds the interpreter. Zero means DefaultMaxSteps.
	MaxSteps uint64

	// Native builds and runs the program through Driver and compares its
	// output with the interpreter's.
	Native bool
	Driver api.Driver

	// Output is the artifact path of the native build. Empty means a
	// temporary directory.
	Output string
}

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Source       string
	Length       int
	LintIssues   []Issue
	StructIssues []Issue
	RangeIssues  []Issue

	Interpreted  bool
	InterpOutput string
	InterpErr    error
	Steps        uint64

	NativeRan    bool
	NativeOutput string
	NativeErr    error
}

// Interpret runs prog on the interpreter for at most maxSteps instructions
// and returns what it printed.
func Interpret(prog instr.Program, maxSteps uint64) (string, uint64, error) {
	var out bytes.Buffer

	m, err := core.NewMachine(prog, &out)
	if err != nil {
		return "", 0, err
	}

	for !m.Halted() {
		if m.Steps() >= maxSteps {
			return out.String(), m.Steps(), ErrStepLimit
		}
		if err := m.Step(); err != nil {
			return out.String(), m.Steps(), err
		}
	}

	return out.String(), m.Steps(), nil
}

// GenerateReport runs lint, the interpreter and, if requested, a native run,
// and returns a report.
func GenerateReport(
	ctx context.Context,
	prog instr.Program,
	opts Options,
) *VerificationReport {
	report := &VerificationReport{
		Source: prog.Source,
		Length: prog.Len(),
	}

	report.LintIssues = RunLint(prog)
	for _, issue := range report.LintIssues {
		if issue.Type == IssueRange {
			report.RangeIssues = append(report.RangeIssues, issue)
		} else {
			report.StructIssues = append(report.StructIssues, issue)
		}
	}

	if len(report.LintIssues) > 0 {
		return report
	}

	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	report.Interpreted = true
	report.InterpOutput, report.Steps, report.InterpErr = Interpret(prog, maxSteps)

	if opts.Native && opts.Driver != nil {
		report.NativeRan = true
		report.NativeOutput, report.NativeErr = runNative(ctx, prog, opts)
	}

	return report
}

func runNative(
	ctx context.Context,
	prog instr.Program,
	opts Options,
) (string, error) {
	output := opts.Output
	if output == "" {
		dir, err := os.MkdirTemp("", "tungsten-verify-")
		if err != nil {
			return "", err
		}
		defer os.RemoveAll(dir)

		output = filepath.Join(dir, "prog")
	}

	var stdout, stderr bytes.Buffer
	err := opts.Driver.Run(ctx, prog, output, &stdout, &stderr)

	return stdout.String(), err
}

// OK reports whether lint found nothing, the interpreter completed, and the
// native run, if any, completed with identical output.
func (r *VerificationReport) OK() bool {
	if len(r.LintIssues) > 0 || !r.Interpreted || r.InterpErr != nil {
		return false
	}
	if r.NativeRan {
		return r.NativeErr == nil && r.NativeOutput == r.InterpOutput
	}
	return true
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "PROGRAM VERIFICATION REPORT")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\nSource: %s (%d instructions)\n", r.Source, r.Length)

	// STAGE 1: LINT
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "No lint issues found")
	} else {
		fmt.Fprintf(w, "Found %d lint issues:\n", len(r.LintIssues))
		writeIssues(w, dash, IssueStruct, r.StructIssues)
		writeIssues(w, dash, IssueRange, r.RangeIssues)
	}

	// STAGE 2: INTERPRETER
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: INTERPRETER")
	fmt.Fprintln(w, separator)

	switch {
	case !r.Interpreted:
		fmt.Fprintln(w, "Skipped")
	case r.InterpErr != nil:
		fmt.Fprintf(w, "Error after %d steps: %v\n", r.Steps, r.InterpErr)
	default:
		fmt.Fprintf(w, "Completed in %d steps\n", r.Steps)
	}

	// STAGE 3: NATIVE
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 3: NATIVE RUN")
	fmt.Fprintln(w, separator)

	switch {
	case !r.NativeRan:
		fmt.Fprintln(w, "Skipped")
	case r.NativeErr != nil:
		fmt.Fprintf(w, "Error: %v\n", r.NativeErr)
	default:
		fmt.Fprintln(w, "Completed")
	}

	if r.Interpreted {
		writeOutputs(w, r)
	}

	// SUMMARY
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d RANGE)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.RangeIssues))
	if r.OK() {
		fmt.Fprintln(w, "PROGRAM PASSED ALL CHECKS")
	} else {
		fmt.Fprintln(w, "PROGRAM FAILED VERIFICATION")
	}

	fmt.Fprintln(w)
}

func writeIssues(w io.Writer, dash string, kind IssueType, issues []Issue) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s ISSUES (%d):\n", kind, len(issues))
	fmt.Fprintln(w, dash)
	for _, issue := range issues {
		if issue.Addr < 0 {
			fmt.Fprintf(w, "  %s\n", issue.Message)
			continue
		}
		fmt.Fprintf(w, "  [addr=%d %s] %s\n", issue.Addr, issue.Op, issue.Message)
	}
}

func writeOutputs(w io.Writer, r *VerificationReport) {
	interp := splitLines(r.InterpOutput)
	var native []string
	if r.NativeRan {
		native = splitLines(r.NativeOutput)
	}

	rows := len(interp)
	if len(native) > rows {
		rows = len(native)
	}
	if rows == 0 {
		return
	}

	t := table.NewWriter()
	t.SetTitle("Output")
	if r.NativeRan {
		t.AppendHeader(table.Row{"Line", "Interpreter", "Native", ""})
	} else {
		t.AppendHeader(table.Row{"Line", "Interpreter"})
	}

	for i := 0; i < rows; i++ {
		a := lineAt(interp, i)
		if !r.NativeRan {
			t.AppendRow(table.Row{i + 1, a})
			continue
		}

		b := lineAt(native, i)
		mark := ""
		if a != b {
			mark = "DIFF"
		}
		t.AppendRow(table.Row{i + 1, a, b, mark})
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, t.Render())
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
