package inline

import (
	"github.com/quotepipe/quotepipe/fields"
	"github.com/quotepipe/quotepipe/grid"
	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/numeric"
)

// Adapter is the inline-table source adapter for message bodies.
type Adapter struct {
	syn fields.Synonyms
}

// NewAdapter returns an inline adapter using the given header synonyms.
func NewAdapter(syn fields.Synonyms) *Adapter {
	return &Adapter{syn: syn}
}

// Extract reconstructs tables from a message body. Structured HTML tables
// are preferred; when the HTML body is empty or contains none, line-oriented
// heuristics over the plain-text body (repeated tab, pipe, or multi-space
// delimiters across consecutive lines) take over. Bodies with no detectable
// table simply contribute zero rows; that is not an error.
func (a *Adapter) Extract(bodyText, bodyHTML string) ([]model.RawRow, []model.Warning, error) {
	tables := a.fromHTML(bodyHTML)
	if len(tables) == 0 {
		tables = grid.Detect(bodyText, a.syn)
	}
	if len(tables) == 0 {
		return nil, nil, nil
	}

	loc := numeric.DetectLocale(grid.NumericSamples(tables))

	base := model.Provenance{Source: model.SourceInline}
	var rows []model.RawRow
	for _, t := range tables {
		rows = append(rows, t.RawRows(a.syn, base, loc, len(rows))...)
	}
	return rows, nil, nil
}

// fromHTML lifts parsed HTML tables into the grid representation so both
// body paths share row-building, summary-row skipping and confidence rules.
func (a *Adapter) fromHTML(bodyHTML string) []grid.Table {
	if bodyHTML == "" {
		return nil
	}
	var tables []grid.Table
	for _, rows := range htmlTables(bodyHTML) {
		if len(rows) < grid.MinRows {
			continue
		}
		header := -1
		if a.syn.IsHeaderRow(rows[0]) {
			header = 0
		}
		tables = append(tables, grid.Table{
			Rows:        rows,
			HeaderIndex: header,
		})
	}
	return tables
}
