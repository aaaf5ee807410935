// Package dis supports analysis of lox bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and uses the
// InstructionIter type from the `bytecode` package.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cloudcmds/lox/bytecode"
	"github.com/cloudcmds/lox/internal/table"
	"github.com/cloudcmds/lox/op"
	"github.com/cloudcmds/lox/value"
	"github.com/fatih/color"
)

// Instruction represents a single decoded instruction and its operands.
type Instruction struct {
	Offset int
	Line   int
	// SameLine is true when the previous instruction came from the same
	// source line.
	SameLine bool
	Name     string
	Opcode   op.Code
	Operands []byte
	// ConstantIndex is the pool index loaded by a constant instruction, or
	// -1 for other instructions.
	ConstantIndex int
	Constant      value.Value
}

// IsConstantLoad reports whether the instruction loads a constant.
func (i Instruction) IsConstantLoad() bool {
	return i.ConstantIndex >= 0
}

// Disassemble returns a parsed representation of the given chunk.
func Disassemble(c *bytecode.Chunk) ([]Instruction, error) {
	var instructions []Instruction
	prevLine := -1
	iter := bytecode.NewInstructionIter(c)
	for {
		ins, ok := iter.Next()
		if !ok {
			break
		}
		line, err := c.Line(ins.Offset)
		if err != nil {
			return nil, err
		}
		instr := Instruction{
			Offset:        ins.Offset,
			Line:          line,
			SameLine:      line == prevLine,
			Name:          ins.Op.String(),
			Opcode:        ins.Op,
			Operands:      ins.Operands,
			ConstantIndex: -1,
		}
		if ins.Op.IsConstantLoad() {
			index, err := bytecode.DecodeOperand(ins.Op, ins.Operands)
			if err != nil {
				return nil, err
			}
			constant, err := c.ConstantAt(index)
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", ins.Offset, err)
			}
			instr.ConstantIndex = index
			instr.Constant = constant
		}
		instructions = append(instructions, instr)
		prevLine = line
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return instructions, nil
}

var (
	bold    = color.New(color.Bold).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// Print a table of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, strconv.Itoa(instr.Offset))
		if instr.SameLine {
			values = append(values, faint("|"))
		} else {
			values = append(values, strconv.Itoa(instr.Line))
		}
		values = append(values, bold(instr.Name))
		if instr.IsConstantLoad() {
			values = append(values, strconv.Itoa(instr.ConstantIndex))
			values = append(values, formatConstant(instr.Constant))
		} else {
			values = append(values, formatOperands(instr.Operands))
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "LINE", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// Fprint writes a compact listing, one instruction per line, under a
// "== name ==" header:
//
//	0000    1 OP_CONSTANT         0 '1.2'
//	0002    | OP_NEGATE
func Fprint(w io.Writer, name string, instructions []Instruction) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for _, instr := range instructions {
		fmt.Fprintf(&sb, "%04d ", instr.Offset)
		if instr.SameLine {
			sb.WriteString("   | ")
		} else {
			fmt.Fprintf(&sb, "%4d ", instr.Line)
		}
		switch {
		case instr.IsConstantLoad():
			fmt.Fprintf(&sb, "%-16s %4d '%s'", instr.Name, instr.ConstantIndex, instr.Constant.String())
		case len(instr.Operands) > 0:
			fmt.Fprintf(&sb, "%-16s %s", instr.Name, formatOperands(instr.Operands))
		default:
			sb.WriteString(instr.Name)
		}
		sb.WriteByte('\n')
	}
	io.WriteString(w, sb.String())
}

func formatConstant(v value.Value) string {
	switch v.Kind() {
	case value.KindNumber:
		return yellow(v.Inspect())
	case value.KindString:
		return green(truncate(v.Inspect(), 80))
	default:
		return magenta(v.Inspect())
	}
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

func formatOperands(operands []byte) string {
	var sb strings.Builder
	for i, b := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(b)))
	}
	return sb.String()
}
