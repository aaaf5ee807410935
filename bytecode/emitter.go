package bytecode

import "github.com/cloudcmds/lox/value"

// Emitter is the write interface a compiler front end needs. *Chunk
// implements it; front ends should depend on this interface so they can be
// tested against a recording fake.
type Emitter interface {
	// Emit appends one byte attributed to line.
	Emit(b byte, line int)

	// EmitConstant adds v to the constant pool and emits a load for it.
	EmitConstant(v value.Value, line int) (int, error)

	// CurrentLine returns the line of the most recent byte.
	CurrentLine() int
}

var _ Emitter = (*Chunk)(nil)
