// Package table renders rows of strings as a bordered ASCII table. Cell
// widths ignore ANSI escape sequences so colored cells stay aligned.
package table

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment controls how a cell is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}

// Table accumulates a header and rows and writes them on Render.
type Table struct {
	w           io.Writer
	header      []string
	rows        [][]string
	columnAlign []Alignment
	headerAlign []Alignment
}

// NewTable returns a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets per-column alignment for body rows.
func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

// WithHeaderAlignment sets per-column alignment for the header.
func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

// WithRows appends all the given rows.
func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds one row.
func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the table. Write errors are ignored, matching fmt.Fprint.
func (t *Table) Render() {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return
	}
	var sb strings.Builder
	border := t.border(widths)
	sb.WriteString(border)
	if len(t.header) > 0 {
		t.writeRow(&sb, t.header, widths, t.headerAlign)
		sb.WriteString(border)
	}
	for _, row := range t.rows {
		t.writeRow(&sb, row, widths, t.columnAlign)
	}
	sb.WriteString(border)
	io.WriteString(t.w, sb.String())
}

func (t *Table) columnWidths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) border(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, row []string, widths []int, align []Alignment) {
	sb.WriteByte('|')
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		a := AlignLeft
		if i < len(align) {
			a = align[i]
		}
		sb.WriteByte(' ')
		sb.WriteString(pad(cell, w, a))
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
}

func pad(s string, width int, align Alignment) string {
	gap := width - displayWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
