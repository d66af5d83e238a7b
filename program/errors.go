package program

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tungsten/instr"
)

// ErrAlreadyResolved is returned when a program is handed to the resolver a
// second time. Resolved immediates would be reinterpreted as placeholders.
var ErrAlreadyResolved = errors.New("program is already resolved")

// LexError reports a word that is neither a keyword nor an integer literal.
// Line and Col are 1-based; Col counts characters from the start of the line,
// not words.
type LexError struct {
	File string
	Line int
	Col  int
	Text string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: unknown word %q", e.File, e.Line, e.Col, e.Text)
}

// StructureError reports an unbalanced or interleaved control-flow construct.
// Addr is the address of the offending closer, or of the innermost opener left
// unterminated.
type StructureError struct {
	Addr   int
	Op     instr.Op
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("address %d (%s): %s", e.Addr, e.Op, e.Reason)
}
