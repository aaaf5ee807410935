package bytecode

import (
	"fmt"
	"sort"

	"github.com/cloudcmds/lox/errz"
	"github.com/hashicorp/go-multierror"
)

// LineRun marks the offset where the bytes of a new source line begin. The
// line applies to every byte from Offset up to the Offset of the next run.
type LineRun struct {
	Offset int
	Line   int
}

// String returns a formatted representation of the run.
func (r LineRun) String() string {
	return fmt.Sprintf("%d@%d", r.Line, r.Offset)
}

// lineAt returns the line of the run with the greatest offset that is not
// past offset. runs must be non-empty and sorted by offset.
func lineAt(runs []LineRun, offset int) int {
	i := sort.Search(len(runs), func(i int) bool {
		return runs[i].Offset > offset
	})
	return runs[i-1].Line
}

// LineRunCount returns the number of runs in the line table.
func (c *Chunk) LineRunCount() int {
	return len(c.lines)
}

// LineRunAt returns the line run at the given index.
func (c *Chunk) LineRunAt(index int) (LineRun, error) {
	if index < 0 || index >= len(c.lines) {
		return LineRun{}, errz.Bounds("bytecode.LineRunAt", "index", index, len(c.lines))
	}
	return c.lines[index], nil
}

// LineRuns returns a copy of the line table.
func (c *Chunk) LineRuns() []LineRun {
	if len(c.lines) == 0 {
		return nil
	}
	out := make([]LineRun, len(c.lines))
	copy(out, c.lines)
	return out
}

// Validate checks the line table against the chunk's invariants and
// returns every violation found. A chunk built only through Write with
// non-decreasing lines always validates.
func (c *Chunk) Validate() error {
	return ValidateLineRuns(c.lines, len(c.code))
}

// ValidateLineRuns checks a line table describing codeLen bytes of code.
func ValidateLineRuns(runs []LineRun, codeLen int) error {
	const opName = "bytecode.Validate"
	var result *multierror.Error
	if codeLen > 0 && len(runs) == 0 {
		result = multierror.Append(result,
			errz.Invariantf(opName, 0, "%d code bytes but no line runs", codeLen))
	}
	if codeLen == 0 && len(runs) > 0 {
		result = multierror.Append(result,
			errz.Invariantf(opName, 0, "%d line runs but no code", len(runs)))
	}
	if len(runs) > 0 && runs[0].Offset != 0 {
		result = multierror.Append(result,
			errz.Invariantf(opName, 0, "first run starts at offset %d", runs[0].Offset))
	}
	for i := 1; i < len(runs); i++ {
		prev, cur := runs[i-1], runs[i]
		if cur.Offset <= prev.Offset {
			result = multierror.Append(result,
				errz.Invariantf(opName, i, "run %d offset %d does not follow %d", i, cur.Offset, prev.Offset))
		}
		if cur.Line < prev.Line {
			result = multierror.Append(result,
				errz.Invariantf(opName, i, "run %d line %d regresses from %d", i, cur.Line, prev.Line))
		}
	}
	for i, r := range runs {
		if codeLen > 0 && r.Offset >= codeLen {
			result = multierror.Append(result,
				errz.Invariantf(opName, i, "run %d offset %d past end of code (%d bytes)", i, r.Offset, codeLen))
		}
	}
	return result.ErrorOrNil()
}
