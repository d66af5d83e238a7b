package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState renders the machine's instruction pointer and operand stack,
// top of stack first.
func PrintState(w io.Writer, m *Machine) {
	s := &m.state

	fmt.Fprintf(w, "==============State@%d==============\n", s.IP)

	next := "halted"
	if !s.halted() {
		next = s.Code[s.IP].String()
	}

	regTable := table.NewWriter()
	regTable.SetTitle("Machine")
	regTable.AppendHeader(table.Row{"IP", "Next", "Steps", "Depth"})
	regTable.AppendRow(table.Row{s.IP, next, s.Steps, len(s.Stack)})
	fmt.Fprintln(w, regTable.Render())

	stackTable := table.NewWriter()
	stackTable.SetTitle("Operand Stack")
	stackTable.AppendHeader(table.Row{"Depth", "Value"})
	for i := len(s.Stack) - 1; i >= 0; i-- {
		stackTable.AppendRow(table.Row{len(s.Stack) - 1 - i, s.Stack[i]})
	}
	fmt.Fprintln(w, stackTable.Render())
	fmt.Fprintln(w, "====================================")
}

func LogState(m *Machine) {
	slog.Debug("StateCheckpoint",
		"IP", m.state.IP,
		"Steps", m.state.Steps,
		"Stack", m.state.Stack,
	)
}
