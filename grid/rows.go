package grid

import (
	"strings"

	"github.com/quotepipe/quotepipe/fields"
	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/numeric"
)

// NumericSamples collects every numeric-looking cell across the tables, for
// document-level locale detection.
func NumericSamples(tables []Table) []string {
	var samples []string
	for _, t := range tables {
		for _, row := range t.Rows {
			for _, cell := range row {
				if numeric.LooksNumeric(cell) {
					samples = append(samples, cell)
				}
			}
		}
	}
	return samples
}

// RawRows converts a reconstructed table into RawRows. base supplies the
// source/file/sheet/page coordinates; the row index is assigned from
// startIndex so multiple tables from one document keep a single stable
// ordering. Summary rows ("Total", "Includes: ...") and mid-table header
// echoes are skipped. Rows from a headerless table, and rows whose quantity
// or price fail to parse, are emitted with ConfidenceLow rather than
// dropped; disposition is the unifier's call.
func (t Table) RawRows(syn fields.Synonyms, base model.Provenance, loc numeric.Locale, startIndex int) []model.RawRow {
	cols, headered := t.Columns(syn)
	rows := make([]model.RawRow, 0, len(t.DataRows()))

	idx := startIndex
	for _, cells := range t.DataRows() {
		vals := cols.Extract(cells)
		if fields.IsSummaryLabel(vals.SKU) || syn.IsHeaderEcho(vals.SKU) {
			continue
		}
		row := model.RawRow{
			Provenance:  base,
			SKU:         vals.SKU,
			Description: vals.Description,
			Quantity:    vals.Quantity,
			UnitPrice:   vals.UnitPrice,
			Total:       vals.Total,
			Category:    vals.Category,
			Raw:         strings.Join(cells, " | "),
			Locale:      loc,
		}
		if row.Empty() {
			continue
		}
		row.Provenance.Index = idx
		idx++

		_, qtyOK := numeric.ParseQuantity(vals.Quantity)
		_, priceOK := numeric.ParsePrice(vals.UnitPrice, loc)
		if headered && qtyOK && priceOK {
			row.Confidence = model.ConfidenceHigh
		} else {
			row.Confidence = model.ConfidenceLow
		}
		rows = append(rows, row)
	}
	return rows
}
