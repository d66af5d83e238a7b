package verify

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/sarchlab/tungsten/instr"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Jump lands on the wrong instruction
	IssueRange  IssueType = "RANGE"  // Jump target outside the program
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType      // STRUCT or RANGE
	Addr    int            // Address of the offending instruction (-1 if not applicable)
	Op      instr.Op       // Operation at Addr
	Message string         // Human-readable description
	Details map[string]any // Additional structured data
}

func (i Issue) Error() string {
	if i.Addr < 0 {
		return fmt.Sprintf("[%s] %s", i.Type, i.Message)
	}
	return fmt.Sprintf("[%s] address %d (%s): %s", i.Type, i.Addr, i.Op, i.Message)
}

// RunLint performs static checks on the jump immediates of a program.
// Returns a list of issues found, or empty list if no issues.
func RunLint(prog instr.Program) []Issue {
	if !prog.Resolved {
		return []Issue{{
			Type:    IssueStruct,
			Addr:    -1,
			Message: "program has not been resolved",
		}}
	}

	var issues []Issue

	n := prog.Len()
	for addr, inst := range prog.Instructions {
		if !inst.Op.Valid() {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Addr:    addr,
				Op:      inst.Op,
				Message: "undefined operation",
			})
			continue
		}

		if !inst.Op.IsJump() {
			continue
		}

		if inst.Imm < 0 || inst.Imm > int64(n) {
			issues = append(issues, Issue{
				Type:    IssueRange,
				Addr:    addr,
				Op:      inst.Op,
				Message: fmt.Sprintf("jump target %d outside [0, %d]", inst.Imm, n),
				Details: map[string]any{"target": inst.Imm, "length": n},
			})
			continue
		}

		if msg := checkTarget(prog.Instructions, addr, int(inst.Imm)); msg != "" {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				Addr:    addr,
				Op:      inst.Op,
				Message: msg,
				Details: map[string]any{"target": inst.Imm},
			})
		}
	}

	return issues
}

func checkTarget(code []instr.Instruction, addr, target int) string {
	opAt := func(a int) instr.Op {
		if a < 0 || a >= len(code) {
			return instr.Op(255)
		}
		return code[a].Op
	}

	switch code[addr].Op {
	case instr.If:
		if target <= addr {
			return fmt.Sprintf("IF jumps backwards to %d", target)
		}
		if opAt(target-1) != instr.Else && opAt(target) != instr.End {
			return fmt.Sprintf("IF target %d is neither past an ELSE nor an END", target)
		}
	case instr.Else:
		if target <= addr || opAt(target) != instr.End {
			return fmt.Sprintf("ELSE target %d is not a following END", target)
		}
	case instr.End:
		if target == addr+1 {
			return ""
		}
		if target >= addr || opAt(target) != instr.While {
			return fmt.Sprintf("END target %d is neither its successor nor a preceding WHILE", target)
		}
	case instr.Do:
		if target <= addr+1 || opAt(target-1) != instr.End {
			return fmt.Sprintf("DO target %d is not past a following END", target)
		}
		back := int(code[target-1].Imm)
		if back >= addr || opAt(back) != instr.While {
			return fmt.Sprintf("DO exits past the END at %d, which does not loop back to a WHILE before it", target-1)
		}
	}

	return ""
}

// Check runs the lint and combines every issue into one error.
func Check(prog instr.Program) error {
	var result *multierror.Error
	for _, issue := range RunLint(prog) {
		result = multierror.Append(result, issue)
	}

	return result.ErrorOrNil()
}
