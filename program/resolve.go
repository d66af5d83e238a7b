package program

import (
	"fmt"

	"github.com/sarchlab/tungsten/instr"
)

// Resolve links every IF/ELSE/END and WHILE/DO/END construct in place, turning
// the placeholder immediates left by Build into absolute addresses. It walks
// the program once and keeps the addresses of the open constructs on a stack.
//
// After a successful call:
//   - IF jumps past its ELSE, or onto its END, when the condition is zero;
//   - ELSE jumps onto the END of its IF;
//   - END of an IF/ELSE falls through to the next address;
//   - END of a loop jumps back to the WHILE, and DO jumps just past that END.
func Resolve(prog *instr.Program) error {
	if prog.Resolved {
		return ErrAlreadyResolved
	}

	code := prog.Instructions
	open := make([]int, 0, 8)

	pop := func() (int, bool) {
		if len(open) == 0 {
			return 0, false
		}
		addr := open[len(open)-1]
		open = open[:len(open)-1]
		return addr, true
	}

	for ip := range code {
		switch code[ip].Op {
		case instr.If, instr.While:
			open = append(open, ip)

		case instr.Else:
			ifAddr, ok := pop()
			if !ok {
				return &StructureError{Addr: ip, Op: instr.Else, Reason: "ELSE without an open IF"}
			}
			if code[ifAddr].Op != instr.If {
				return &StructureError{
					Addr:   ip,
					Op:     instr.Else,
					Reason: fmt.Sprintf("ELSE cannot close %s at address %d", code[ifAddr].Op, ifAddr),
				}
			}
			code[ifAddr].Imm = int64(ip + 1)
			open = append(open, ip)

		case instr.End:
			blockAddr, ok := pop()
			if !ok {
				return &StructureError{Addr: ip, Op: instr.End, Reason: "END without an open block"}
			}

			switch code[blockAddr].Op {
			case instr.If, instr.Else:
				code[blockAddr].Imm = int64(ip)
				code[ip].Imm = int64(ip + 1)
			case instr.Do:
				// DO still remembers the address of its WHILE.
				code[ip].Imm = code[blockAddr].Imm
				code[blockAddr].Imm = int64(ip + 1)
			default:
				return &StructureError{
					Addr:   ip,
					Op:     instr.End,
					Reason: fmt.Sprintf("END cannot close %s at address %d", code[blockAddr].Op, blockAddr),
				}
			}

		case instr.Do:
			whileAddr, ok := pop()
			if !ok {
				return &StructureError{Addr: ip, Op: instr.Do, Reason: "DO without an open WHILE"}
			}
			if code[whileAddr].Op != instr.While {
				return &StructureError{
					Addr:   ip,
					Op:     instr.Do,
					Reason: fmt.Sprintf("DO cannot close %s at address %d", code[whileAddr].Op, whileAddr),
				}
			}
			code[ip].Imm = int64(whileAddr)
			open = append(open, ip)
		}
	}

	if addr, ok := pop(); ok {
		return &StructureError{
			Addr:   addr,
			Op:     code[addr].Op,
			Reason: "unterminated block",
		}
	}

	prog.Resolved = true

	return nil
}
