// Package instr defines the flat instruction representation shared by the
// resolver, the interpreter and the code generator.
package instr

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MemCapacity is the size, in bytes, of the static memory region.
const MemCapacity = 640000

// ErrUnresolved is returned by every backend handed a program that has not
// been through the block resolver.
var ErrUnresolved = errors.New("program has not been resolved")

// Op is the operation tag of an instruction.
type Op uint8

const (
	Push Op = iota
	Plus
	Minus
	Equal
	GreaterThan
	True
	False
	If
	Else
	End
	While
	Do
	Dupl
	Mem
	Dump

	numOps
)

var opNames = [numOps]string{
	Push:        "PUSH",
	Plus:        "PLUS",
	Minus:       "MINUS",
	Equal:       "EQUAL",
	GreaterThan: "GREATER_THAN",
	True:        "TRUE",
	False:       "FALSE",
	If:          "IF",
	Else:        "ELSE",
	End:         "END",
	While:       "WHILE",
	Do:          "DO",
	Dupl:        "DUPL",
	Mem:         "MEM",
	Dump:        "DUMP",
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Valid reports whether o is one of the defined operations.
func (o Op) Valid() bool {
	return o < numOps
}

// IsJump reports whether the immediate of o is a jump address.
func (o Op) IsJump() bool {
	switch o {
	case If, Else, End, Do:
		return true
	}
	return false
}

// ParseOp returns the operation whose mnemonic is name.
func ParseOp(name string) (Op, error) {
	for i, n := range opNames {
		if n == name {
			return Op(i), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// MarshalYAML writes the mnemonic instead of the numeric tag.
func (o Op) MarshalYAML() (interface{}, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid operation %d", uint8(o))
	}
	return o.String(), nil
}

// UnmarshalYAML reads an operation mnemonic.
func (o *Op) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}

	op, err := ParseOp(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*o = op
	return nil
}

// Instruction is an operation together with its 64-bit immediate. The
// immediate holds the literal of a Push and the target address of a jump.
type Instruction struct {
	Op  Op    `yaml:"op"`
	Imm int64 `yaml:"imm"`
}

func (i Instruction) String() string {
	switch {
	case i.Op == Push, i.Op.IsJump():
		return fmt.Sprintf("%s %d", i.Op, i.Imm)
	default:
		return i.Op.String()
	}
}

// Program is a flat sequence of instructions. The index of an instruction is
// its address.
type Program struct {
	Source       string
	Instructions []Instruction

	// Resolved is set by the block resolver once every jump immediate holds a
	// concrete address.
	Resolved bool
}

// Len returns the number of instructions, which is also the address that
// denotes falling off the end of the program.
func (p Program) Len() int {
	return len(p.Instructions)
}

// At returns the instruction at addr.
func (p Program) At(addr int) Instruction {
	return p.Instructions[addr]
}
