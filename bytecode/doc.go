// Package bytecode provides the in-memory representation of compiled lox
// code: the Chunk.
//
// A Chunk holds three things:
//
//   - the raw instruction stream (opcodes and their operand bytes)
//   - a run-length compressed line table mapping offsets to source lines
//   - a constant pool of literal values referenced by index
//
// # Writing
//
// A single producer (normally the compiler) appends bytes in increasing
// offset order, passing the source line that caused each byte. Line numbers
// must never decrease. Consecutive bytes on the same line share one
// [LineRun], so the line table grows with the number of distinct lines
// rather than with the size of the code.
//
//	c := bytecode.New()
//	c.WriteConstant(value.Number(1.2), 1)
//	c.WriteOp(op.Return, 1)
//
// Constant loads use one of two encodings, picked from the pool size when
// the load is emitted:
//
//	OP_CONSTANT       idx            (pool index 0..255)
//	OP_CONSTANT_LONG  lo  mid  hi    (pool index 256..16,777,215)
//
// # Reading
//
// After compilation the chunk is handed read-only to one consumer (a VM or
// disassembler), which walks the code with an [InstructionIter] and asks
// [Chunk.Line] for the source line of an offset when reporting errors.
//
// # Concurrency
//
// A Chunk is not safe for concurrent mutation. Independent compilation
// units must each own their own Chunk. Once writing is finished, concurrent
// reads are safe.
//
// # Debug Checks
//
// Building with the loxdebug tag makes [Chunk.Write] panic if a line number
// regresses. Release builds skip the check; the regressing run is recorded
// as written and [Chunk.Validate] reports it.
package bytecode
