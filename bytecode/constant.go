package bytecode

import (
	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/op"
)

const (
	// MaxShortIndex is the largest pool index the OP_CONSTANT form encodes.
	MaxShortIndex = 1<<8 - 1
	// MaxLongIndex is the largest pool index the OP_CONSTANT_LONG form encodes.
	MaxLongIndex = 1<<24 - 1

	shortLoadWidth = 2
	longLoadWidth  = 4
)

// EncodeConstant returns the complete load instruction for a pool index:
// opcode followed by its operand bytes. The long form stores the index as
// three little-endian bytes.
func EncodeConstant(index int) ([]byte, error) {
	if index < 0 {
		return nil, errz.Bounds("bytecode.EncodeConstant", "index", index, MaxLongIndex+1)
	}
	if index > MaxLongIndex {
		return nil, errz.Overflow("bytecode.EncodeConstant", index, MaxLongIndex+1)
	}
	return appendConstant(make([]byte, 0, longLoadWidth), index), nil
}

// appendConstant appends the load instruction for a validated index.
func appendConstant(dst []byte, index int) []byte {
	if index <= MaxShortIndex {
		return append(dst, byte(op.Constant), byte(index))
	}
	return append(dst,
		byte(op.ConstantLong),
		byte(index&0xff),
		byte((index>>8)&0xff),
		byte((index>>16)&0xff),
	)
}

// DecodeConstant reads the constant load instruction that starts at offset
// in code. The opcode decides how many operand bytes follow; the operand
// bytes alone do not say which form was used.
func DecodeConstant(code []byte, offset int) (index, width int, err error) {
	const opName = "bytecode.DecodeConstant"
	if offset < 0 || offset >= len(code) {
		return 0, 0, errz.Bounds(opName, "offset", offset, len(code))
	}
	switch op.Code(code[offset]) {
	case op.Constant:
		if offset+shortLoadWidth > len(code) {
			return 0, 0, errz.Decodef(opName, offset, "truncated OP_CONSTANT at offset %d", offset)
		}
		return int(code[offset+1]), shortLoadWidth, nil
	case op.ConstantLong:
		if offset+longLoadWidth > len(code) {
			return 0, 0, errz.Decodef(opName, offset, "truncated OP_CONSTANT_LONG at offset %d", offset)
		}
		index = int(code[offset+1]) |
			int(code[offset+2])<<8 |
			int(code[offset+3])<<16
		return index, longLoadWidth, nil
	default:
		return 0, 0, errz.Decodef(opName, offset, "%s at offset %d is not a constant load",
			op.Code(code[offset]), offset)
	}
}

// DecodeOperand decodes the operand bytes of a constant load whose opcode
// has already been read.
func DecodeOperand(code op.Code, operands []byte) (int, error) {
	const opName = "bytecode.DecodeOperand"
	switch code {
	case op.Constant:
		if len(operands) != 1 {
			return 0, errz.Decodef(opName, 0, "OP_CONSTANT wants 1 operand byte, got %d", len(operands))
		}
		return int(operands[0]), nil
	case op.ConstantLong:
		if len(operands) != 3 {
			return 0, errz.Decodef(opName, 0, "OP_CONSTANT_LONG wants 3 operand bytes, got %d", len(operands))
		}
		return int(operands[0]) | int(operands[1])<<8 | int(operands[2])<<16, nil
	default:
		return 0, errz.Decodef(opName, 0, "%s is not a constant load", code)
	}
}
