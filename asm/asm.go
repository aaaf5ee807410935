// Package asm assembles a small textual bytecode listing into a chunk.
//
// Each non-blank line holds one instruction:
//
//	[LINE:] OPNAME [OPERAND]   # optional comment
//
// LINE is the source line the instruction is attributed to; when omitted,
// the line number of the listing itself is used. Source lines must not
// decrease. Opcode names may be written with or without the OP_ prefix and
// in any case.
//
// Two pseudo instructions take operands:
//
//	CONSTANT <literal>   add a constant and load it; the short or long
//	                     form is picked from the pool size
//	BYTE <0-255>         write one raw byte
//
// Literals are numbers, double-quoted strings, true, false and nil.
package asm

import (
	"strconv"
	"strings"

	"github.com/cloudcmds/lox/bytecode"
	"github.com/cloudcmds/lox/errz"
	"github.com/cloudcmds/lox/op"
	"github.com/cloudcmds/lox/value"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

type config struct {
	log       zerolog.Logger
	chunkOpts []bytecode.Option
}

// Option configures Assemble.
type Option func(*config)

// WithLogger sets the logger used by the assembler and the chunk it builds.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.log = log
		c.chunkOpts = append(c.chunkOpts, bytecode.WithLogger(log))
	}
}

// WithChunkOptions passes options through to bytecode.New.
func WithChunkOptions(opts ...bytecode.Option) Option {
	return func(c *config) {
		c.chunkOpts = append(c.chunkOpts, opts...)
	}
}

// Assemble builds a new chunk from src. All syntax errors in the listing are
// reported together.
func Assemble(src string, opts ...Option) (*bytecode.Chunk, error) {
	cfg := &config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	c := bytecode.New(cfg.chunkOpts...)
	if err := assemble(c, src, cfg.log); err != nil {
		return nil, err
	}
	cfg.log.Debug().
		Int("code_bytes", c.Len()).
		Int("constants", c.ConstantCount()).
		Int("line_runs", c.LineRunCount()).
		Msg("assembled chunk")
	return c, nil
}

// AssembleTo writes the instructions in src to an existing emitter. On error
// the emitter may hold the instructions that preceded the first bad line.
func AssembleTo(e bytecode.Emitter, src string) error {
	return assemble(e, src, zerolog.Nop())
}

func assemble(e bytecode.Emitter, src string, log zerolog.Logger) error {
	var result *multierror.Error
	// last tracks parsed lines, not emitted ones, so regressions after an
	// error are still reported.
	last := e.CurrentLine()
	for i, text := range strings.Split(src, "\n") {
		textLine := i + 1
		stmt, err := parseLine(text, textLine)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if stmt == nil {
			continue
		}
		if stmt.line < last {
			result = multierror.Append(result, errz.Syntaxf(textLine,
				"source line %d is before the current line %d", stmt.line, last))
			continue
		}
		last = stmt.line
		if result.ErrorOrNil() != nil {
			// Keep checking syntax, but stop emitting once the listing is bad.
			continue
		}
		if err := stmt.emit(e); err != nil {
			result = multierror.Append(result, errz.Syntaxf(textLine, "emit %s", stmt.name).WithCause(err))
			continue
		}
		log.Trace().Int("line", stmt.line).Str("op", stmt.name).Msg("emitted")
	}
	return result.ErrorOrNil()
}

type statement struct {
	line    int
	name    string
	code    op.Code
	raw     bool
	operand value.Value
	rawByte byte
}

func (s *statement) emit(e bytecode.Emitter) error {
	switch {
	case s.raw:
		e.Emit(s.rawByte, s.line)
	case s.code == op.Constant:
		if _, err := e.EmitConstant(s.operand, s.line); err != nil {
			return err
		}
	default:
		e.Emit(byte(s.code), s.line)
	}
	return nil
}

// parseLine parses one listing line. It returns nil for blank and comment
// lines.
func parseLine(text string, textLine int) (*statement, error) {
	text = strings.TrimSpace(stripComment(text))
	if text == "" {
		return nil, nil
	}
	stmt := &statement{line: textLine}

	if head, rest, ok := strings.Cut(text, ":"); ok && isDigits(strings.TrimSpace(head)) {
		n, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil || n < 1 {
			return nil, errz.Syntaxf(textLine, "invalid source line %q", head)
		}
		stmt.line = n
		text = strings.TrimSpace(rest)
		if text == "" {
			return nil, errz.Syntaxf(textLine, "missing instruction after line number")
		}
	}

	name := strings.Fields(text)[0]
	operand := strings.TrimSpace(text[len(name):])
	name = strings.ToUpper(name)
	stmt.name = name

	switch name {
	case "BYTE":
		n, err := strconv.ParseUint(operand, 0, 8)
		if err != nil {
			return nil, errz.Syntaxf(textLine, "BYTE wants a value 0-255, got %q", operand)
		}
		stmt.raw = true
		stmt.rawByte = byte(n)
		return stmt, nil
	}

	code, ok := op.Lookup(name)
	if !ok {
		return nil, errz.Syntaxf(textLine, "unknown instruction %q", name)
	}
	stmt.code = code
	switch code {
	case op.Constant:
		if operand == "" {
			return nil, errz.Syntaxf(textLine, "%s wants a literal operand", name)
		}
		v, err := parseLiteral(operand)
		if err != nil {
			return nil, errz.Syntaxf(textLine, "invalid literal %s", operand).WithCause(err)
		}
		stmt.operand = v
	case op.ConstantLong:
		return nil, errz.Syntaxf(textLine, "%s is not written directly; CONSTANT picks the width", name)
	default:
		if operand != "" {
			return nil, errz.Syntaxf(textLine, "%s takes no operand, got %q", name, operand)
		}
	}
	return stmt, nil
}

func parseLiteral(s string) (value.Value, error) {
	switch s {
	case "nil":
		return value.Nil(), nil
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	}
	if strings.HasPrefix(s, `"`) {
		str, err := strconv.Unquote(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(str), nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(n), nil
}

// stripComment removes a trailing # comment that is not inside a string.
func stripComment(s string) string {
	inString := false
	escaped := false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case r == '#' && !inString:
			return s[:i]
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
