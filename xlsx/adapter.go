package xlsx

import (
	"fmt"
	"strings"

	"github.com/quotepipe/quotepipe/fields"
	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/numeric"
)

// maxHeaderScan bounds how many leading rows are examined when locating a
// sheet's header row. Vendor spreadsheets often open with logo banners and
// contact blocks before the real table starts.
const maxHeaderScan = 20

// Adapter is the spreadsheet source adapter.
type Adapter struct {
	syn fields.Synonyms
}

// NewAdapter returns a spreadsheet adapter using the given header synonyms.
func NewAdapter(syn fields.Synonyms) *Adapter {
	return &Adapter{syn: syn}
}

// Extract reads one XLSX attachment and returns its raw rows. Every sheet is
// scanned; sheets with no recognizable header row contribute a warning and
// zero rows. Rows whose quantity or price fail to parse are emitted with
// ConfidenceLow rather than dropped. A non-nil error means the whole
// attachment was unreadable.
func (a *Adapter) Extract(content []byte, filename string) ([]model.RawRow, []model.Warning, error) {
	r, err := OpenBytes(content)
	if err != nil {
		return nil, nil, fmt.Errorf("reading workbook %s: %w", filename, err)
	}

	var rows []model.RawRow
	var warnings []model.Warning
	idx := 0

	for _, sheet := range r.Sheets() {
		base := model.Provenance{
			Source: model.SourceSpreadsheet,
			File:   filename,
			Sheet:  sheet.Name,
		}

		headerRow, cols := a.findHeader(sheet)
		if headerRow < 0 {
			warnings = append(warnings, model.Warning{
				Kind:       model.WarnSheetSkipped,
				Message:    fmt.Sprintf("no header row found in sheet %q", sheet.Name),
				Provenance: base,
			})
			continue
		}

		sheetLoc := sheetLocale(sheet)

		for i := headerRow + 1; i < sheet.RowCount(); i++ {
			cells := sheet.RowStrings(i)
			vals := cols.Extract(cells)
			if fields.IsSummaryLabel(vals.SKU) || a.syn.IsHeaderEcho(vals.SKU) {
				continue
			}
			loc := rowLocale(sheet.Rows[i], cols, sheetLoc)

			row := model.RawRow{
				Provenance:  base,
				SKU:         vals.SKU,
				Description: vals.Description,
				Quantity:    vals.Quantity,
				UnitPrice:   vals.UnitPrice,
				Total:       vals.Total,
				Category:    vals.Category,
				Raw:         strings.Join(nonEmpty(cells), " | "),
				Locale:      loc,
			}
			if row.Empty() {
				continue
			}
			row.Provenance.Index = idx
			idx++

			_, qtyOK := numeric.ParseQuantity(vals.Quantity)
			_, priceOK := numeric.ParsePrice(vals.UnitPrice, loc)
			if qtyOK && priceOK {
				row.Confidence = model.ConfidenceHigh
			} else {
				row.Confidence = model.ConfidenceLow
			}
			rows = append(rows, row)
		}
	}

	return rows, warnings, nil
}

// findHeader scans the sheet's leading rows for the header row and returns
// its index and column mapping, or -1 when none scores high enough.
func (a *Adapter) findHeader(sheet *Sheet) (int, fields.Columns) {
	limit := sheet.RowCount()
	if limit > maxHeaderScan {
		limit = maxHeaderScan
	}
	for i := 0; i < limit; i++ {
		cols, score := a.syn.MapHeader(sheet.RowStrings(i))
		if score >= fields.HeaderScore {
			return i, cols
		}
	}
	return -1, nil
}

// rowLocale picks the locale hint for one data row. Typed number cells are
// stored with a canonical dot decimal regardless of the author's locale, so
// a row whose price cells are all typed must not go through comma
// conversion; a row holding its prices as strings follows the sheet's
// detected locale.
func rowLocale(cells []Cell, cols fields.Columns, sheetLoc numeric.Locale) numeric.Locale {
	typed := false
	for _, role := range []fields.Role{fields.RoleUnitPrice, fields.RoleTotal} {
		idx, ok := cols[role]
		if !ok || idx < 0 || idx >= len(cells) {
			continue
		}
		switch c := cells[idx]; c.Type {
		case CellTypeString:
			if numeric.LooksNumeric(c.Value) {
				return sheetLoc
			}
		case CellTypeNumber:
			typed = true
		}
	}
	if typed {
		return numeric.LocaleDot
	}
	return sheetLoc
}

// sheetLocale detects the numeric convention from every numeric-looking cell
// in the sheet. Typed number cells are stored canonically by the format, but
// string cells holding prices ("1.234,56 €") follow the author's locale.
func sheetLocale(sheet *Sheet) numeric.Locale {
	var samples []string
	for i := 0; i < sheet.RowCount(); i++ {
		for _, cell := range sheet.Rows[i] {
			if cell.Type == CellTypeString && numeric.LooksNumeric(cell.Value) {
				samples = append(samples, strings.TrimSpace(cell.Value))
			}
		}
	}
	return numeric.DetectLocale(samples)
}

func nonEmpty(cells []string) []string {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
