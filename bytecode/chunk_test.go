package bytecode

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/op"
	"github.com/cloudcmds/lox/value"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSingleByte(t *testing.T) {
	c := New()
	c.WriteOp(op.Return, 5)

	assert.Equal(t, []byte{byte(op.Return)}, c.Code())
	assert.Equal(t, []LineRun{{Offset: 0, Line: 5}}, c.LineRuns())

	line, err := c.Line(0)
	require.NoError(t, err)
	assert.Equal(t, 5, line)
}

func TestWriteStartsRunOnLineChange(t *testing.T) {
	c := New()
	c.Write(0xA0, 1)
	c.Write(0xA1, 1)
	c.Write(0xA2, 2)

	assert.Equal(t, []LineRun{{Offset: 0, Line: 1}, {Offset: 2, Line: 2}}, c.LineRuns())
	for offset, want := range []int{1, 1, 2} {
		line, err := c.Line(offset)
		require.NoError(t, err)
		assert.Equal(t, want, line, "offset %d", offset)
	}
}

func TestSameLineProducesOneRun(t *testing.T) {
	for _, n := range []int{1, 2, 7, 8, 9, 1000} {
		c := New()
		for i := 0; i < n; i++ {
			c.WriteOp(op.Nil, 42)
		}
		assert.Equal(t, n, c.Len())
		assert.Equal(t, 1, c.LineRunCount(), "n=%d", n)
	}
}

func TestLineSkipsAndGaps(t *testing.T) {
	c := New()
	c.WriteOp(op.Nil, 1)
	c.WriteOp(op.Pop, 10)
	c.WriteOp(op.Nil, 10)
	c.WriteOp(op.Pop, 300)

	want := []int{1, 10, 10, 300}
	for offset, w := range want {
		line, err := c.Line(offset)
		require.NoError(t, err)
		assert.Equal(t, w, line)
	}
	assert.Equal(t, 3, c.LineRunCount())
}

func TestLineOutOfRange(t *testing.T) {
	c := New()
	_, err := c.Line(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))

	c.WriteOp(op.Return, 1)
	_, err = c.Line(1)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))
	_, err = c.Line(-1)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))
}

func TestLineMatchesEveryWrite(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		c := New()
		var want []int
		line := 1
		for i := 0; i < 500; i++ {
			if rng.Intn(4) == 0 {
				line += rng.Intn(3) + 1
			}
			if rng.Intn(10) == 0 {
				_, err := c.WriteConstant(value.Number(float64(i)), line)
				require.NoError(t, err)
				for c.Len() > len(want) {
					want = append(want, line)
				}
				continue
			}
			c.Write(byte(rng.Intn(256)), line)
			want = append(want, line)
		}
		require.Equal(t, len(want), c.Len())
		for offset, w := range want {
			got, err := c.Line(offset)
			require.NoError(t, err)
			require.Equal(t, w, got, "round %d offset %d", round, offset)
		}
		require.NoError(t, c.Validate())
	}
}

func TestWriteConstantShortForm(t *testing.T) {
	c := New()
	idx, err := c.WriteConstant(value.Number(1.2), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []byte{byte(op.Constant), 0}, c.Code())
	assert.Equal(t, 1, c.LineRunCount())

	v, err := c.ConstantAt(0)
	require.NoError(t, err)
	assert.Equal(t, "1.2", v.String())
}

func TestWriteConstantLongForm(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		_, err := c.AddConstant(value.Number(float64(i)))
		require.NoError(t, err)
	}
	idx, err := c.WriteConstant(value.Number(256), 10)
	require.NoError(t, err)
	assert.Equal(t, 256, idx)
	assert.Equal(t, 257, c.ConstantCount())
	assert.Equal(t, []byte{byte(op.ConstantLong), 0x00, 0x01, 0x00}, c.Code())
	for offset := 0; offset < 4; offset++ {
		line, err := c.Line(offset)
		require.NoError(t, err)
		assert.Equal(t, 10, line)
	}
}

func TestWriteConstantWidthBoundary(t *testing.T) {
	c := New()
	for i := 0; i < 300; i++ {
		_, err := c.AddConstant(value.Number(float64(i)))
		require.NoError(t, err)
	}

	ins, err := EncodeConstant(255)
	require.NoError(t, err)
	assert.Len(t, ins, 2)
	assert.Equal(t, op.Constant, op.Code(ins[0]))

	ins, err = EncodeConstant(256)
	require.NoError(t, err)
	assert.Len(t, ins, 4)
	assert.Equal(t, op.ConstantLong, op.Code(ins[0]))

	// Emitted loads decode back to the index they were written for.
	start := c.Len()
	idx, err := c.WriteConstant(value.String("a"), 1)
	require.NoError(t, err)
	got, width, err := c.ReadConstantIndex(start)
	require.NoError(t, err)
	assert.Equal(t, idx, got)
	assert.Equal(t, 4, width)
}

func TestWriteConstantSwitchesForm(t *testing.T) {
	c := New()
	var offsets []int
	for i := 0; i < 300; i++ {
		offsets = append(offsets, c.Len())
		idx, err := c.WriteConstant(value.Number(float64(i)), 1)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
	for i, offset := range offsets {
		idx, width, err := c.ReadConstantIndex(offset)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
		if i <= MaxShortIndex {
			assert.Equal(t, 2, width)
		} else {
			assert.Equal(t, 4, width)
		}
	}
	assert.Equal(t, 256*2+44*4, c.Len())
	assert.Equal(t, 1, c.LineRunCount())
}

func TestWriteConstantOverflow(t *testing.T) {
	defer func(limit int) { constantLimit = limit }(constantLimit)
	constantLimit = 300

	c := New()
	for i := 0; i < 300; i++ {
		_, err := c.WriteConstant(value.Number(float64(i)), 1)
		require.NoError(t, err)
	}
	before := c.Len()
	_, err := c.WriteConstant(value.Number(1), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errz.ErrOverflow))
	assert.Equal(t, 300, c.ConstantCount())
	assert.Equal(t, before, c.Len())

	_, err = c.AddConstant(value.Nil())
	assert.True(t, errors.Is(err, errz.ErrOverflow))
}

func TestConstantAtOutOfRange(t *testing.T) {
	c := New()
	for i := 0; i < 3; i++ {
		_, err := c.AddConstant(value.Number(float64(i)))
		require.NoError(t, err)
	}
	_, err := c.ConstantAt(3)
	require.Error(t, err)
	assert.Equal(t, errz.KindBounds, errz.KindOf(err))
}

func TestResetMatchesNew(t *testing.T) {
	c := New()
	c.WriteOp(op.Nil, 1)
	_, err := c.WriteConstant(value.Number(1), 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		c.Reset()
		fresh := New()
		assert.Equal(t, fresh.Len(), c.Len())
		assert.Equal(t, fresh.Code(), c.Code())
		assert.Equal(t, fresh.LineRuns(), c.LineRuns())
		assert.Equal(t, fresh.ConstantCount(), c.ConstantCount())
		assert.Equal(t, fresh.CurrentLine(), c.CurrentLine())
		assert.Equal(t, fresh.Stats(), c.Stats())
	}

	// The chunk is reusable after a reset.
	c.WriteOp(op.Return, 9)
	line, err := c.Line(0)
	require.NoError(t, err)
	assert.Equal(t, 9, line)
}

func TestResetOnFreshChunk(t *testing.T) {
	c := New()
	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.LineRunCount())
}

func TestGrowthIsIndependent(t *testing.T) {
	c := New()
	for i := 0; i < 100; i++ {
		c.WriteOp(op.Nil, 1)
	}
	assert.Equal(t, 128, cap(c.code))
	assert.Equal(t, initialCapacity, cap(c.lines))

	c.WriteOp(op.Return, 2)
	assert.Equal(t, initialCapacity, cap(c.lines))
	assert.Equal(t, 2, c.LineRunCount())
}

func TestGrowCapacity(t *testing.T) {
	assert.Equal(t, 8, growCapacity(0))
	assert.Equal(t, 8, growCapacity(3))
	assert.Equal(t, 16, growCapacity(8))
	assert.Equal(t, 64, growCapacity(32))
}

func TestWithCapacity(t *testing.T) {
	c := New(WithCapacity(64, 4))
	assert.Equal(t, 64, cap(c.code))
	assert.Equal(t, 4, cap(c.lines))
}

func TestCodeReturnsCopy(t *testing.T) {
	c := New()
	c.WriteOp(op.Nil, 1)
	code := c.Code()
	code[0] = byte(op.Return)
	b, err := c.ByteAt(0)
	require.NoError(t, err)
	assert.Equal(t, byte(op.Nil), b)

	runs := c.LineRuns()
	runs[0].Line = 99
	run, err := c.LineRunAt(0)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Line)

	_, err = c.ByteAt(1)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))
	_, err = c.LineRunAt(1)
	assert.True(t, errors.Is(err, errz.ErrOutOfRange))
}

func TestEmitterInterface(t *testing.T) {
	var e Emitter = New()
	assert.Equal(t, 0, e.CurrentLine())
	e.Emit(byte(op.Nil), 4)
	assert.Equal(t, 4, e.CurrentLine())
	idx, err := e.EmitConstant(value.Bool(true), 6)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 6, e.CurrentLine())
}

func TestWriteLogsLineRuns(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.TraceLevel)
	c := New(WithLogger(log))
	c.WriteOp(op.Nil, 1)
	c.WriteOp(op.Nil, 1)
	c.WriteOp(op.Return, 2)
	out := buf.String()
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("line run started")))
	assert.Contains(t, out, `"line":2`)
}

func TestStats(t *testing.T) {
	c := New()
	for i := 0; i < 258; i++ {
		_, err := c.WriteConstant(value.Number(float64(i)), 1+i/100)
		require.NoError(t, err)
	}
	c.WriteOp(op.Return, 3)
	s := c.Stats()
	assert.Equal(t, 256, s.ShortLoads)
	assert.Equal(t, 2, s.LongLoads)
	assert.Equal(t, 259, s.Instructions)
	assert.Equal(t, 258, s.Constants)
	assert.Equal(t, 3, s.LineRuns)
	assert.Equal(t, 256*2+2*4+1, s.CodeBytes)
	assert.InDelta(t, float64(s.CodeBytes)/3, s.BytesPerRun, 1e-9)
}
