// Package grid reconstructs tables from plain text. It detects runs of
// consecutive lines that share a column-delimiter pattern (tabs, pipe
// characters, or runs of two-or-more spaces) and splits them into cell
// grids. Both the PDF adapter (text layer and OCR output) and the inline
// adapter's plain-text fallback use it, so scanned pages and pasted email
// tables go through identical structure heuristics.
package grid

import (
	"strings"

	"github.com/quotepipe/quotepipe/fields"
)

// Delimiter identifies how a table's columns were separated.
type Delimiter int

const (
	// DelimNone means the line has no detectable column structure.
	DelimNone Delimiter = iota
	// DelimTab separates columns with tab characters.
	DelimTab
	// DelimPipe separates columns with '|' characters.
	DelimPipe
	// DelimSpaces separates columns with runs of two or more spaces.
	DelimSpaces
)

// Table is one reconstructed table: the raw source lines and the split cell
// grid. HeaderIndex is the row index of the detected header row within Rows,
// or -1 when no row matched enough header synonyms.
type Table struct {
	Lines       []string
	Rows        [][]string
	HeaderIndex int
	Delimiter   Delimiter
}

// MinRows is the minimum number of lines (including a header, if any) for a
// run of delimited lines to count as a table.
const MinRows = 2

// Detect finds all tables in a block of plain text. Consecutive lines with
// the same delimiter class and at least two columns form a candidate table;
// candidates shorter than MinRows are discarded. The synonym set is used
// only to locate each table's header row.
func Detect(text string, syn fields.Synonyms) []Table {
	var tables []Table
	var run []string
	var runDelim Delimiter

	flush := func() {
		if t, ok := build(run, runDelim, syn); ok {
			tables = append(tables, t)
		}
		run, runDelim = nil, DelimNone
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		delim := classify(trimmed)
		if delim == DelimNone {
			flush()
			continue
		}
		if runDelim != DelimNone && delim != runDelim {
			flush()
		}
		runDelim = delim
		run = append(run, trimmed)
	}
	flush()

	return tables
}

// classify reports the delimiter class of a single line, requiring at least
// two non-empty columns. Tab beats pipe beats spaces, checked in that order.
func classify(line string) Delimiter {
	if strings.TrimSpace(line) == "" {
		return DelimNone
	}
	for _, d := range []Delimiter{DelimTab, DelimPipe, DelimSpaces} {
		if len(split(line, d)) >= 2 {
			return d
		}
	}
	return DelimNone
}

// split breaks a line into trimmed, non-empty cells for a delimiter class.
func split(line string, d Delimiter) []string {
	var parts []string
	switch d {
	case DelimTab:
		parts = strings.Split(line, "\t")
	case DelimPipe:
		parts = strings.Split(line, "|")
	case DelimSpaces:
		parts = splitOnSpaceRuns(line)
	default:
		return nil
	}
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

// splitOnSpaceRuns splits on runs of two or more spaces, keeping
// single-space-separated words together as one cell.
func splitOnSpaceRuns(line string) []string {
	var parts []string
	var cur strings.Builder
	spaces := 0
	for _, r := range line {
		if r == ' ' {
			spaces++
			continue
		}
		if spaces >= 2 && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		} else if spaces == 1 && cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		spaces = 0
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func build(lines []string, d Delimiter, syn fields.Synonyms) (Table, bool) {
	if len(lines) < MinRows {
		return Table{}, false
	}
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells := split(line, d)
		if len(cells) >= 2 {
			rows = append(rows, cells)
		}
	}
	if len(rows) < MinRows {
		return Table{}, false
	}
	header := -1
	if syn.IsHeaderRow(rows[0]) {
		header = 0
	}
	return Table{
		Lines:       lines,
		Rows:        rows,
		HeaderIndex: header,
		Delimiter:   d,
	}, true
}

// Columns resolves the table's column mapping. With a detected header the
// mapping comes from header text; otherwise columns are guessed by position
// (SKU, description, quantity, unit price) and the caller should mark the
// resulting rows low confidence.
func (t Table) Columns(syn fields.Synonyms) (fields.Columns, bool) {
	if t.HeaderIndex >= 0 {
		cols, _ := syn.MapHeader(t.Rows[t.HeaderIndex])
		return cols, true
	}
	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	cols := fields.Columns{}
	positional := []fields.Role{fields.RoleSKU, fields.RoleDescription, fields.RoleQuantity, fields.RoleUnitPrice}
	for i, role := range positional {
		if i < width {
			cols[role] = i
		}
	}
	return cols, false
}

// DataRows returns the table's rows excluding the header row, if one was
// detected.
func (t Table) DataRows() [][]string {
	if t.HeaderIndex < 0 {
		return t.Rows
	}
	return t.Rows[t.HeaderIndex+1:]
}
