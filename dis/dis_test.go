package dis

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cloudcmds/lox/asm"
	"github.com/cloudcmds/lox/bytecode"
	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/op"
	"github.com/cloudcmds/lox/value"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestChunkDisassembly(t *testing.T) {
	disableColor(t)
	c, err := asm.Assemble(`
1: CONSTANT 1.2
1: NEGATE
2: CONSTANT "kaboom"
2: PRINT
3: RETURN`)
	require.NoError(t, err)

	instructions, err := Disassemble(c)
	require.NoError(t, err)
	require.Len(t, instructions, 5)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+------+-------------+----------+----------+
| OFFSET | LINE |   OPCODE    | OPERANDS |   INFO   |
+--------+------+-------------+----------+----------+
|      0 |    1 | OP_CONSTANT |        0 | 1.2      |
|      2 |    | | OP_NEGATE   |          |          |
|      3 |    2 | OP_CONSTANT |        1 | "kaboom" |
|      5 |    | | OP_PRINT    |          |          |
|      6 |    3 | OP_RETURN   |          |          |
+--------+------+-------------+----------+----------+
`)
	assert.Equal(t, expected+"\n", buf.String())
}

func TestFprint(t *testing.T) {
	c := bytecode.New()
	for i := 0; i < 256; i++ {
		_, err := c.AddConstant(value.Nil())
		require.NoError(t, err)
	}
	_, err := c.WriteConstant(value.String("long"), 7)
	require.NoError(t, err)
	c.Write(0xEE, 7)
	c.WriteOp(op.Return, 8)

	instructions, err := Disassemble(c)
	require.NoError(t, err)
	require.True(t, instructions[0].IsConstantLoad())
	assert.Equal(t, 256, instructions[0].ConstantIndex)
	assert.Equal(t, []byte{0x00, 0x01, 0x00}, instructions[0].Operands)
	assert.False(t, instructions[1].IsConstantLoad())

	var buf bytes.Buffer
	Fprint(&buf, "test", instructions)
	expected := "== test ==\n" +
		"0000    7 OP_CONSTANT_LONG  256 'long'\n" +
		"0004    | OP_UNKNOWN_0xEE\n" +
		"0005    8 OP_RETURN\n"
	assert.Equal(t, expected, buf.String())
}

func TestDisassembleTruncated(t *testing.T) {
	c := bytecode.New()
	c.WriteOp(op.Constant, 1)
	_, err := Disassemble(c)
	require.Error(t, err)
	assert.Equal(t, errz.KindDecode, errz.KindOf(err))
}

func TestDisassembleBadConstantIndex(t *testing.T) {
	c := bytecode.New()
	c.WriteOp(op.Constant, 1)
	c.Write(3, 1)
	_, err := Disassemble(c)
	require.Error(t, err)
	assert.Equal(t, errz.KindBounds, errz.KindOf(err))
}

func TestDisassembleEmpty(t *testing.T) {
	instructions, err := Disassemble(bytecode.New())
	require.NoError(t, err)
	assert.Empty(t, instructions)
}

func TestTruncateLongStringConstant(t *testing.T) {
	disableColor(t)
	long := strings.Repeat("é", 100)
	got := formatConstant(value.String(long))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.Equal(t, `"`+strings.Repeat("é", 76)+"...", got)

	assert.Equal(t, `"short"`, formatConstant(value.String("short")))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abcdef", 5))
}
