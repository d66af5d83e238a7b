// Package verify provides debugging tools for checking compiled programs.
//
// It implements three complementary stages:
//
// 1. Static Lint (lint.go): checks that every jump immediate written by the
// block resolver lands where the block structure says it should.
//   - STRUCT issues: unresolved programs, jumps landing on the wrong
//     instruction
//   - RANGE issues: jump targets outside [0, N]
//
// 2. Interpretation: runs the program on core.Machine with a step budget and
// captures the DUMP output.
//
// 3. Native run (optional): builds the program through an api.Driver and
// compares the executable's standard output with the interpreter's, byte for
// byte.
//
// # Jump Targets
//
// For a program of N instructions, a resolved program satisfies:
//
//	IF    -> one past the matching ELSE, or the matching END
//	ELSE  -> the matching END
//	END   -> its own successor (IF blocks), or the matching WHILE
//	DO    -> one past the END that closes the loop
//
// # Usage Example
//
//	prog, err := program.LoadProgramFile("loop.tn", program.BuildOptions{})
//	if err != nil {
//	    panic(err)
//	}
//
//	if err := verify.Check(prog); err != nil {
//	    panic(err)
//	}
//
//	report := verify.GenerateReport(ctx, prog, verify.Options{})
//	report.WriteReport(os.Stdout)
package verify
