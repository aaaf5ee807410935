package bytecode

import (
	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/op"
)

// Instruction is one decoded instruction: its opcode and operand bytes.
type Instruction struct {
	Offset   int
	Op       op.Code
	Operands []byte
}

// Width returns the instruction width in bytes.
func (i Instruction) Width() int {
	return 1 + len(i.Operands)
}

// InstructionIter iterates over the instructions in a Chunk. Undefined
// opcodes are yielded as single-byte instructions.
type InstructionIter struct {
	chunk *Chunk
	pos   int
	err   error
}

// NewInstructionIter creates a new instruction iterator for the given chunk.
func NewInstructionIter(c *Chunk) *InstructionIter {
	return &InstructionIter{chunk: c}
}

// Next returns the next instruction. It returns false at the end of the
// code or when an instruction's operands run past the end, in which case
// Err reports the problem.
func (i *InstructionIter) Next() (Instruction, bool) {
	code := i.chunk.code
	if i.err != nil || i.pos >= len(code) {
		return Instruction{}, false
	}
	offset := i.pos
	opcode := op.Code(code[offset])
	width := op.GetInfo(opcode).OperandWidth
	if offset+1+width > len(code) {
		i.err = errz.Decodef("bytecode.InstructionIter", offset,
			"%s at offset %d needs %d operand bytes, %d remain",
			opcode, offset, width, len(code)-offset-1)
		return Instruction{}, false
	}
	i.pos = offset + 1 + width
	var operands []byte
	if width > 0 {
		operands = make([]byte, width)
		copy(operands, code[offset+1:i.pos])
	}
	return Instruction{Offset: offset, Op: opcode, Operands: operands}, true
}

// Err returns the decode error that stopped iteration, if any.
func (i *InstructionIter) Err() error {
	return i.err
}

// All returns all remaining instructions as a newly allocated slice.
func (i *InstructionIter) All() ([]Instruction, error) {
	var results []Instruction
	for {
		instr, ok := i.Next()
		if !ok {
			break
		}
		results = append(results, instr)
	}
	return results, i.err
}
