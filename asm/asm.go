// Package asm translates resolved programs into NASM x86-64 source for Linux.
//
// Every program address becomes a label "addr_<n>", plus one label for the
// address just past the last instruction, so each resolved jump target maps
// to a label. The operand stack is the machine stack. A single shared "dump"
// routine prints a signed 64-bit integer followed by a newline; the memory
// region is an uninitialized .bss buffer of instr.MemCapacity bytes.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/sarchlab/tungsten/instr"
)

// ErrUnresolved is returned for programs that have not been through the block
// resolver.
var ErrUnresolved = instr.ErrUnresolved

const header = `bits 64
segment .text
`

// dumpRoutine prints rdi as a signed decimal number and a newline through
// write(2). Digits are produced right to left in a 40-byte stack buffer.
const dumpRoutine = `
dump:
    mov     r9, -3689348814741910323
    sub     rsp, 40
    mov     BYTE [rsp+31], 10
    lea     rcx, [rsp+30]
    mov     r10, rdi
    test    rdi, rdi
    jns     .L2
    neg     rdi
.L2:
    mov     rax, rdi
    lea     r8, [rsp+32]
    mul     r9
    mov     rax, rdi
    sub     r8, rcx
    shr     rdx, 3
    lea     rsi, [rdx+rdx*4]
    add     rsi, rsi
    sub     rax, rsi
    add     eax, 48
    mov     BYTE [rcx], al
    mov     rax, rdi
    mov     rdi, rdx
    mov     rdx, rcx
    sub     rcx, 1
    cmp     rax, 9
    ja      .L2
    lea     rax, [rsp+32]
    mov     edi, 1
    sub     rdx, rax
    lea     rsi, [rsp+32+rdx]
    mov     rdx, r8
    test    r10, r10
    jns     .L3
    mov     BYTE [rsi-1], 45
    sub     rsi, 1
    add     rdx, 1
.L3:
    mov     rax, 1
    syscall
    add     rsp, 40
    ret

global _start

_start:
`

const exitSequence = `    mov rax, 60
    mov rdi, 0
    syscall
segment .bss
mem: resb %d`

// LabelPrefix prefixes the label of every program address.
const LabelPrefix = "addr_"

// Label returns the label of a program address.
func Label(addr int64) string {
	return fmt.Sprintf("%s%d", LabelPrefix, addr)
}

type generator struct {
	w   *bufio.Writer
	err error
}

// Generate writes the NASM translation of prog to w.
func Generate(w io.Writer, prog instr.Program) error {
	if !prog.Resolved {
		return ErrUnresolved
	}

	g := &generator{w: bufio.NewWriter(w)}

	g.raw(header)
	g.raw(dumpRoutine)

	for addr, inst := range prog.Instructions {
		if err := g.writeInst(addr, inst, prog.Len()); err != nil {
			return err
		}
	}

	g.line("%s:", Label(int64(prog.Len())))
	g.line(exitSequence, instr.MemCapacity)

	if g.err != nil {
		return g.err
	}

	return g.w.Flush()
}

func (g *generator) raw(s string) {
	if g.err != nil {
		return
	}
	_, g.err = g.w.WriteString(s)
}

func (g *generator) line(format string, args ...any) {
	if g.err != nil {
		return
	}
	_, g.err = fmt.Fprintf(g.w, format+"\n", args...)
}

func (g *generator) comment(name string) {
	g.line("    ;; ----- %s ----- ;;", name)
}

func (g *generator) jumpTarget(addr int, inst instr.Instruction, n int) (string, error) {
	if inst.Imm < 0 || inst.Imm > int64(n) {
		return "", fmt.Errorf("address %d (%s): jump target %d outside [0, %d]", addr, inst.Op, inst.Imm, n)
	}
	return Label(inst.Imm), nil
}

func (g *generator) writeInst(addr int, inst instr.Instruction, n int) error {
	g.line("%s:", Label(int64(addr)))

	switch inst.Op {
	case instr.Push:
		g.comment("PUSH")
		if inst.Imm >= math.MinInt32 && inst.Imm <= math.MaxInt32 {
			g.line("    push %d", inst.Imm)
		} else {
			g.line("    mov rax, %d", inst.Imm)
			g.line("    push rax")
		}
	case instr.Plus:
		g.comment("PLUS")
		g.line("    pop rax")
		g.line("    pop rbx")
		g.line("    add rax, rbx")
		g.line("    push rax")
	case instr.Minus:
		g.comment("MINUS")
		g.line("    pop rax")
		g.line("    pop rbx")
		g.line("    sub rbx, rax")
		g.line("    push rbx")
	case instr.Equal:
		g.comment("EQUAL")
		g.line("    mov rcx, 0")
		g.line("    mov rdx, 1")
		g.line("    pop rax")
		g.line("    pop rbx")
		g.line("    cmp rax, rbx")
		g.line("    cmove rcx, rdx")
		g.line("    push rcx")
	case instr.GreaterThan:
		g.comment("GREATER THAN")
		g.line("    mov rcx, 0")
		g.line("    mov rdx, 1")
		g.line("    pop rbx")
		g.line("    pop rax")
		g.line("    cmp rax, rbx")
		g.line("    cmovg rcx, rdx")
		g.line("    push rcx")
	case instr.True:
		g.comment("TRUE")
		g.line("    push 1")
	case instr.False:
		g.comment("FALSE")
		g.line("    push 0")
	case instr.If, instr.Do:
		target, err := g.jumpTarget(addr, inst, n)
		if err != nil {
			return err
		}
		g.comment(inst.Op.String())
		g.line("    pop rax")
		g.line("    test rax, rax")
		g.line("    jz %s", target)
	case instr.Else:
		target, err := g.jumpTarget(addr, inst, n)
		if err != nil {
			return err
		}
		g.comment("ELSE")
		g.line("    jmp %s", target)
	case instr.End:
		target, err := g.jumpTarget(addr, inst, n)
		if err != nil {
			return err
		}
		g.comment("END")
		if inst.Imm != int64(addr+1) {
			g.line("    jmp %s", target)
		}
	case instr.While:
		g.comment("WHILE")
	case instr.Dupl:
		g.comment("DUPL")
		g.line("    pop rax")
		g.line("    push rax")
		g.line("    push rax")
	case instr.Mem:
		g.comment("MEM")
		g.line("    push mem")
	case instr.Dump:
		g.comment("DUMP")
		g.line("    pop rdi")
		g.line("    call dump")
	default:
		return fmt.Errorf("address %d: unknown operation %v", addr, inst.Op)
	}

	return nil
}
