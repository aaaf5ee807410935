package bytecode

import "github.com/cloudcmds/lox/op"

// Stats contains statistics about a chunk. Useful for checking how well the
// line table compresses and how often the long constant form is needed.
type Stats struct {
	// CodeBytes is the length of the instruction stream.
	CodeBytes int `json:"code_bytes"`

	// Instructions is the number of decoded instructions.
	Instructions int `json:"instructions"`

	// LineRuns is the number of entries in the compressed line table.
	LineRuns int `json:"line_runs"`

	// Constants is the number of values in the constant pool.
	Constants int `json:"constants"`

	ShortLoads int `json:"short_loads"`
	LongLoads  int `json:"long_loads"`

	// BytesPerRun is CodeBytes divided by LineRuns, or 0 for an empty chunk.
	BytesPerRun float64 `json:"bytes_per_run"`
}

// Stats walks the chunk and returns its statistics. Decoding stops at the
// first truncated instruction.
func (c *Chunk) Stats() Stats {
	s := Stats{
		CodeBytes: len(c.code),
		LineRuns:  len(c.lines),
		Constants: c.constants.Len(),
	}
	if s.LineRuns > 0 {
		s.BytesPerRun = float64(s.CodeBytes) / float64(s.LineRuns)
	}
	iter := NewInstructionIter(c)
	for {
		instr, ok := iter.Next()
		if !ok {
			break
		}
		s.Instructions++
		switch instr.Op {
		case op.Constant:
			s.ShortLoads++
		case op.ConstantLong:
			s.LongLoads++
		}
	}
	return s
}
