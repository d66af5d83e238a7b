// Package program turns source text into resolved instruction sequences.
package program

import "github.com/sarchlab/tungsten/instr"

// ISA maps the words of the source language to operations.
type ISA struct {
	// name of the ISA.
	isaName string
	// map from source word to the operation it builds.
	wordToOp map[string]instr.Op
}

// NewISA creates an empty keyword table.
func NewISA(name string) *ISA {
	return &ISA{
		isaName:  name,
		wordToOp: make(map[string]instr.Op),
	}
}

// Name returns the name of the ISA.
func (isa *ISA) Name() string {
	return isa.isaName
}

// Lookup returns the operation that word builds. Numeric literals are not
// part of the table.
func (isa *ISA) Lookup(word string) (instr.Op, bool) {
	op, ok := isa.wordToOp[word]
	return op, ok
}

// Register a new word to the ISA.
func (isa *ISA) registerNewWord(word string, op instr.Op) {
	isa.wordToOp[word] = op
}

// Words returns the number of registered words.
func (isa *ISA) Words() int {
	return len(isa.wordToOp)
}
