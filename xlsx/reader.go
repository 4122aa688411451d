package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// Reader provides access to XLSX workbook content. Attachments arrive as
// byte blobs from the transport layer, so the reader works from memory
// rather than a file path.
type Reader struct {
	zipReader     *zip.Reader
	workbook      *workbookXML
	sharedStrings []string
	sheetRels     map[string]string // RID -> target path
	sheets        []*Sheet
}

// OpenBytes opens an XLSX workbook held in memory.
func OpenBytes(content []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r := &Reader{
		zipReader: zr,
		sheetRels: make(map[string]string),
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	if err := r.parseWorkbook(); err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}
	// Shared strings are optional but common.
	_ = r.parseSharedStrings()
	if err := r.parseWorksheets(); err != nil {
		return nil, fmt.Errorf("parsing worksheets: %w", err)
	}

	return r, nil
}

// validate checks that required XLSX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"xl/workbook.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("xl/_rels/workbook.xml.rels")
	if err != nil {
		// No relationships file; sheet targets fall back to convention.
		return nil
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationships {
		if strings.HasSuffix(rel.Type, "/worksheet") {
			target := rel.Target
			if !strings.HasPrefix(target, "xl/") {
				target = path.Join("xl", target)
			}
			r.sheetRels[rel.ID] = target
		}
	}
	return nil
}

func (r *Reader) parseWorkbook() error {
	data, err := r.getFileContent("xl/workbook.xml")
	if err != nil {
		return err
	}
	var wb workbookXML
	if err := xml.Unmarshal(data, &wb); err != nil {
		return err
	}
	r.workbook = &wb
	return nil
}

func (r *Reader) parseSharedStrings() error {
	data, err := r.getFileContent("xl/sharedStrings.xml")
	if err != nil {
		return err
	}
	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return err
	}
	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		if si.T != "" {
			r.sharedStrings[i] = si.T
			continue
		}
		var sb strings.Builder
		for _, run := range si.R {
			sb.WriteString(run.T)
		}
		r.sharedStrings[i] = sb.String()
	}
	return nil
}

func (r *Reader) parseWorksheets() error {
	for i, ref := range r.workbook.Sheets.Sheet {
		target, ok := r.sheetRels[ref.RID]
		if !ok {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		}
		data, err := r.getFileContent(target)
		if err != nil {
			continue
		}
		sheet, err := r.parseWorksheet(data, ref.Name, i)
		if err != nil {
			continue
		}
		r.sheets = append(r.sheets, sheet)
	}
	if len(r.sheets) == 0 {
		return fmt.Errorf("workbook contains no readable worksheets")
	}
	return nil
}

func (r *Reader) parseWorksheet(data []byte, name string, index int) (*Sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name, Index: index}

	// First pass: find dimensions.
	maxRow, maxCol := 0, 0
	for _, row := range ws.SheetData.Rows {
		if row.R > maxRow {
			maxRow = row.R
		}
		for _, cell := range row.Cells {
			col, _, err := ParseCellRef(cell.R)
			if err != nil {
				continue
			}
			if col > maxCol {
				maxCol = col
			}
		}
	}
	sheet.MaxCol = maxCol

	sheet.Rows = make([][]Cell, maxRow)
	for i := range sheet.Rows {
		sheet.Rows[i] = make([]Cell, maxCol+1)
		for j := range sheet.Rows[i] {
			sheet.Rows[i][j] = Cell{Row: i, Col: j, Type: CellTypeEmpty}
		}
	}

	// Second pass: populate cells.
	for _, row := range ws.SheetData.Rows {
		rowIdx := row.R - 1
		if rowIdx < 0 || rowIdx >= len(sheet.Rows) {
			continue
		}
		for _, cx := range row.Cells {
			col, _, err := ParseCellRef(cx.R)
			if err != nil || col < 0 || col >= len(sheet.Rows[rowIdx]) {
				continue
			}
			cell := &sheet.Rows[rowIdx][col]
			switch cx.T {
			case "s": // shared string
				cell.Type = CellTypeString
				idx, err := strconv.Atoi(cx.V)
				if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
					cell.Value = r.sharedStrings[idx]
				}
			case "b":
				cell.Type = CellTypeBoolean
				if cx.V == "1" {
					cell.Value = "TRUE"
				} else {
					cell.Value = "FALSE"
				}
			case "e":
				cell.Type = CellTypeError
				cell.Value = cx.V
			case "str":
				cell.Type = CellTypeString
				cell.Value = cx.V
			case "inlineStr":
				cell.Type = CellTypeString
				if cx.Is != nil {
					cell.Value = cx.Is.T
				}
			default: // number or empty
				if cx.V != "" {
					cell.Type = CellTypeNumber
					cell.Value = cx.V
				}
			}
		}
	}

	return sheet, nil
}

// SheetCount returns the number of parsed worksheets.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// Sheet returns the worksheet at the given index.
func (r *Reader) Sheet(index int) (*Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range", index)
	}
	return r.sheets[index], nil
}

// Sheets returns all parsed worksheets in workbook order.
func (r *Reader) Sheets() []*Sheet {
	return r.sheets
}
