package program

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tungsten/instr"
)

// LoadProgram lexes, builds and resolves a program read from r. file is only
// used in error positions.
func LoadProgram(file string, r io.Reader, opts BuildOptions) (instr.Program, error) {
	tokens, err := Lex(file, r)
	if err != nil {
		return instr.Program{}, err
	}

	prog, err := Build(tokens, opts)
	if err != nil {
		return instr.Program{}, err
	}
	prog.Source = file

	if err := Resolve(&prog); err != nil {
		return instr.Program{}, fmt.Errorf("%s: %w", file, err)
	}

	return prog, nil
}

// LoadProgramFile loads and resolves the source file at path.
func LoadProgramFile(path string, opts BuildOptions) (instr.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return instr.Program{}, err
	}
	defer f.Close()

	return LoadProgram(path, f, opts)
}

type listing struct {
	Source       string         `yaml:"source,omitempty"`
	Resolved     bool           `yaml:"resolved"`
	Instructions []listingEntry `yaml:"instructions"`
}

type listingEntry struct {
	Addr              int `yaml:"addr"`
	instr.Instruction `yaml:",inline"`
}

// WriteYAML writes the program as an addressed instruction listing.
func WriteYAML(w io.Writer, prog instr.Program) error {
	l := listing{
		Source:       prog.Source,
		Resolved:     prog.Resolved,
		Instructions: make([]listingEntry, len(prog.Instructions)),
	}
	for i, inst := range prog.Instructions {
		l.Instructions[i] = listingEntry{Addr: i, Instruction: inst}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}

	return enc.Close()
}

// ReadYAML reads a listing written by WriteYAML. Addresses must be dense and
// in order. The caller is responsible for checking the jump targets of a
// listing that claims to be resolved.
func ReadYAML(r io.Reader) (instr.Program, error) {
	var l listing

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return instr.Program{}, fmt.Errorf("decoding listing: %w", err)
	}

	prog := instr.Program{
		Source:       l.Source,
		Resolved:     l.Resolved,
		Instructions: make([]instr.Instruction, len(l.Instructions)),
	}
	for i, e := range l.Instructions {
		if e.Addr != i {
			return instr.Program{}, fmt.Errorf("listing entry %d has address %d", i, e.Addr)
		}
		prog.Instructions[i] = e.Instruction
	}

	return prog, nil
}

// LoadProgramFileFromYAML reads an instruction listing from path.
func LoadProgramFileFromYAML(path string) (instr.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return instr.Program{}, err
	}
	defer f.Close()

	prog, err := ReadYAML(f)
	if err != nil {
		return instr.Program{}, fmt.Errorf("%s: %w", path, err)
	}
	if prog.Source == "" {
		prog.Source = path
	}

	return prog, nil
}

// WriteListing renders the program as a table, one row per address.
func WriteListing(w io.Writer, prog instr.Program) {
	t := table.NewWriter()
	t.SetTitle(listingTitle(prog))
	t.AppendHeader(table.Row{"Addr", "Op", "Imm", "Note"})

	for addr, inst := range prog.Instructions {
		imm := ""
		if inst.Op == instr.Push || inst.Op.IsJump() {
			imm = strconv.FormatInt(inst.Imm, 10)
		}
		t.AppendRow(table.Row{addr, inst.Op, imm, listingNote(prog, addr)})
	}
	t.AppendFooter(table.Row{prog.Len(), "", "", "end of program"})

	fmt.Fprintln(w, t.Render())
}

func listingTitle(prog instr.Program) string {
	state := "unresolved"
	if prog.Resolved {
		state = "resolved"
	}
	if prog.Source == "" {
		return state
	}
	return fmt.Sprintf("%s (%s)", prog.Source, state)
}

func listingNote(prog instr.Program, addr int) string {
	inst := prog.At(addr)
	if !prog.Resolved || !inst.Op.IsJump() {
		return ""
	}

	switch {
	case inst.Op == instr.End && inst.Imm == int64(addr+1):
		return "fallthrough"
	case inst.Imm < int64(addr):
		return "loop back"
	case inst.Imm == int64(prog.Len()):
		return "exit"
	}
	return ""
}
