package xlsx

import (
	"fmt"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty CellType = iota
	// CellTypeString indicates a string value.
	CellTypeString
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeError indicates an error value.
	CellTypeError
)

// Cell represents a cell in a worksheet.
type Cell struct {
	Value string   // The cell's display value
	Type  CellType // The type of data
	Row   int      // 0-indexed row
	Col   int      // 0-indexed column
}

// IsEmpty returns true if the cell has no value.
func (c *Cell) IsEmpty() bool {
	return c.Type == CellTypeEmpty || strings.TrimSpace(c.Value) == ""
}

// Sheet represents a worksheet in the workbook.
type Sheet struct {
	Name   string
	Index  int
	Rows   [][]Cell
	MaxCol int // Maximum column index (0-indexed)
}

// RowCount returns the number of rows in the sheet.
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// RowStrings returns the trimmed display values of one row.
func (s *Sheet) RowStrings(row int) []string {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	out := make([]string, len(s.Rows[row]))
	for i, c := range s.Rows[row] {
		out[i] = strings.TrimSpace(c.Value)
	}
	return out
}

// ParseCellRef parses a cell reference like "A1" or "AA100" into column and
// row indices (0-indexed).
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no column letters", ref)
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no row number", ref)
	}

	for _, ch := range strings.ToUpper(ref[:i]) {
		if ch < 'A' || ch > 'Z' {
			return 0, 0, fmt.Errorf("invalid column letter in %q", ref)
		}
		col = col*26 + int(ch-'A'+1)
	}
	col--

	for _, ch := range ref[i:] {
		if ch < '0' || ch > '9' {
			return 0, 0, fmt.Errorf("invalid row number in %q", ref)
		}
		row = row*10 + int(ch-'0')
	}
	if row == 0 {
		return 0, 0, fmt.Errorf("invalid row number in %q", ref)
	}
	row--

	return col, row, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
