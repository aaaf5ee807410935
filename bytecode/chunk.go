package bytecode

import (
	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/op"
	"github.com/cloudcmds/lox/value"
	"github.com/rs/zerolog"
)

// initialCapacity is the capacity given to the code and line buffers the
// first time they grow.
const initialCapacity = 8

// constantLimit is the number of pool slots the long load form can address.
var constantLimit = MaxLongIndex + 1

// Chunk is a sequence of bytecode paired with its line table and constant
// pool. The zero value is not usable; call New.
type Chunk struct {
	code      []byte
	lines     []LineRun
	constants *value.Pool
	log       zerolog.Logger

	codeCap  int
	linesCap int
}

// Option configures a Chunk.
type Option func(*Chunk)

// WithLogger sets the logger used for trace output while writing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Chunk) {
		c.log = log
	}
}

// WithCapacity preallocates the code and line buffers.
func WithCapacity(code, lines int) Option {
	return func(c *Chunk) {
		c.codeCap = code
		c.linesCap = lines
	}
}

// New returns an empty chunk.
func New(opts ...Option) *Chunk {
	c := &Chunk{
		constants: value.NewPool(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.codeCap > 0 {
		c.code = make([]byte, 0, c.codeCap)
	}
	if c.linesCap > 0 {
		c.lines = make([]LineRun, 0, c.linesCap)
	}
	return c
}

// Write appends one byte produced by the given source line. A new line run
// is started only when line differs from the line of the previous byte.
func (c *Chunk) Write(b byte, line int) {
	if debugChecks {
		if last := c.CurrentLine(); len(c.lines) > 0 && line < last {
			panic(errz.Invariantf("bytecode.Write", len(c.code),
				"line %d regresses from %d", line, last))
		}
	}

	if len(c.code) == cap(c.code) {
		c.code = growBytes(c.code)
	}
	c.code = append(c.code, b)

	if n := len(c.lines); n > 0 && c.lines[n-1].Line == line {
		return
	}

	if len(c.lines) == cap(c.lines) {
		c.lines = growRuns(c.lines)
	}
	c.lines = append(c.lines, LineRun{Offset: len(c.code) - 1, Line: line})
	c.log.Trace().
		Int("offset", len(c.code)-1).
		Int("line", line).
		Msg("line run started")
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(code op.Code, line int) {
	c.Write(byte(code), line)
}

// AddConstant appends v to the constant pool without emitting a load and
// returns its index. It fails once the pool can no longer be addressed by
// the long load form.
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if n := c.constants.Len(); n >= constantLimit {
		return -1, errz.Overflow("bytecode.AddConstant", n, constantLimit)
	}
	return c.constants.Append(v), nil
}

// WriteConstant appends v to the constant pool and emits an instruction that
// loads it, tagging every emitted byte with line. Pool indexes up to 255 use
// the two byte OP_CONSTANT form; larger indexes use the four byte
// OP_CONSTANT_LONG form. Exactly one value is appended on success and none
// on failure.
func (c *Chunk) WriteConstant(v value.Value, line int) (int, error) {
	index, err := c.AddConstant(v)
	if err != nil {
		return -1, err
	}
	var buf [longLoadWidth]byte
	ins := appendConstant(buf[:0], index)
	for _, b := range ins {
		c.Write(b, line)
	}
	if len(ins) == longLoadWidth {
		c.log.Debug().
			Int("index", index).
			Int("line", line).
			Msg("long constant load")
	}
	return index, nil
}

// Line returns the source line of the byte at offset.
func (c *Chunk) Line(offset int) (int, error) {
	if offset < 0 || offset >= len(c.code) {
		return 0, errz.Bounds("bytecode.Line", "offset", offset, len(c.code))
	}
	return lineAt(c.lines, offset), nil
}

// Reset releases the code, the line table and the constant pool, returning
// the chunk to the state produced by New with no options.
func (c *Chunk) Reset() {
	if len(c.code) > 0 || len(c.lines) > 0 || c.constants.Len() > 0 {
		c.log.Debug().
			Int("code_bytes", len(c.code)).
			Int("line_runs", len(c.lines)).
			Int("constants", c.constants.Len()).
			Msg("chunk reset")
	}
	c.code = nil
	c.lines = nil
	c.codeCap = 0
	c.linesCap = 0
	c.constants.Reset()
}

// Len returns the number of bytes in the chunk.
func (c *Chunk) Len() int {
	return len(c.code)
}

// ByteAt returns the byte at the given offset.
func (c *Chunk) ByteAt(offset int) (byte, error) {
	if offset < 0 || offset >= len(c.code) {
		return 0, errz.Bounds("bytecode.ByteAt", "offset", offset, len(c.code))
	}
	return c.code[offset], nil
}

// Code returns a copy of the instruction stream.
func (c *Chunk) Code() []byte {
	if len(c.code) == 0 {
		return nil
	}
	out := make([]byte, len(c.code))
	copy(out, c.code)
	return out
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return c.constants.Len()
}

// ConstantAt returns the constant at the given pool index.
func (c *Chunk) ConstantAt(index int) (value.Value, error) {
	return c.constants.At(index)
}

// Constants returns a copy of the constant pool contents.
func (c *Chunk) Constants() []value.Value {
	return c.constants.All()
}

// ReadConstantIndex decodes the constant load instruction starting at
// offset and returns the pool index and instruction width.
func (c *Chunk) ReadConstantIndex(offset int) (index, width int, err error) {
	return DecodeConstant(c.code, offset)
}

// Emit implements Emitter.
func (c *Chunk) Emit(b byte, line int) {
	c.Write(b, line)
}

// EmitConstant implements Emitter.
func (c *Chunk) EmitConstant(v value.Value, line int) (int, error) {
	return c.WriteConstant(v, line)
}

// CurrentLine implements Emitter. It returns the line of the most recently
// written byte, or 0 if the chunk is empty.
func (c *Chunk) CurrentLine() int {
	if len(c.lines) == 0 {
		return 0
	}
	return c.lines[len(c.lines)-1].Line
}

// growCapacity mirrors the doubling growth of the line and code buffers.
func growCapacity(old int) int {
	if old < initialCapacity {
		return initialCapacity
	}
	return old * 2
}

func growBytes(s []byte) []byte {
	grown := make([]byte, len(s), growCapacity(cap(s)))
	copy(grown, s)
	return grown
}

func growRuns(s []LineRun) []LineRun {
	grown := make([]LineRun, len(s), growCapacity(cap(s)))
	copy(grown, s)
	return grown
}
