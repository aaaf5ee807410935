// Package op defines opcodes used by the lox compiler and virtual machine.
package op

// Code is a one-byte opcode that indicates an operation to execute.
type Code byte

const (
	// Constant loads
	Constant     Code = 0 // operand: 1-byte constant index
	ConstantLong Code = 1 // operand: 3-byte little-endian constant index

	// Literals
	Nil   Code = 2
	True  Code = 3
	False Code = 4

	// Stack
	Pop Code = 5

	// Comparison
	Equal   Code = 10
	Greater Code = 11
	Less    Code = 12

	// Arithmetic
	Add      Code = 20
	Subtract Code = 21
	Multiply Code = 22
	Divide   Code = 23
	Not      Code = 24
	Negate   Code = 25

	// Statements
	Print  Code = 30
	Return Code = 31
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// OperandWidth is the number of operand bytes following the opcode.
	OperandWidth int
}

// Width returns the total instruction width in bytes.
func (i Info) Width() int {
	return 1 + i.OperandWidth
}

// Valid reports whether the info describes a defined opcode.
func (i Info) Valid() bool {
	return i.Name != ""
}

var (
	infos  = make([]Info, 256)
	byName = make(map[string]Code)
)

func init() {
	type opInfo struct {
		op    Code
		name  string
		width int
	}
	ops := []opInfo{
		{Add, "OP_ADD", 0},
		{Constant, "OP_CONSTANT", 1},
		{ConstantLong, "OP_CONSTANT_LONG", 3},
		{Divide, "OP_DIVIDE", 0},
		{Equal, "OP_EQUAL", 0},
		{False, "OP_FALSE", 0},
		{Greater, "OP_GREATER", 0},
		{Less, "OP_LESS", 0},
		{Multiply, "OP_MULTIPLY", 0},
		{Negate, "OP_NEGATE", 0},
		{Nil, "OP_NIL", 0},
		{Not, "OP_NOT", 0},
		{Pop, "OP_POP", 0},
		{Print, "OP_PRINT", 0},
		{Return, "OP_RETURN", 0},
		{Subtract, "OP_SUBTRACT", 0},
		{True, "OP_TRUE", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandWidth: o.width,
		}
		byName[o.name] = o.op
	}
}

// GetInfo returns information about the given opcode. The returned Info is
// the zero value (with Valid() false) for undefined opcodes.
func GetInfo(op Code) Info {
	return infos[op]
}

// Lookup returns the opcode with the given name. Both "OP_RETURN" and
// "RETURN" forms are accepted.
func Lookup(name string) (Code, bool) {
	if c, ok := byName[name]; ok {
		return c, true
	}
	c, ok := byName["OP_"+name]
	return c, ok
}

// String returns the opcode name, or a hex placeholder if undefined.
func (c Code) String() string {
	if info := infos[c]; info.Valid() {
		return info.Name
	}
	return unknownName(c)
}

// IsConstantLoad reports whether c is one of the two constant load forms.
func (c Code) IsConstantLoad() bool {
	return c == Constant || c == ConstantLong
}

func unknownName(c Code) string {
	const hex = "0123456789ABCDEF"
	return "OP_UNKNOWN_0x" + string([]byte{hex[c>>4], hex[c&0x0f]})
}
