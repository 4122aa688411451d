// Package quote assembles priced lines into the final quote artifact:
// totals, tax, per-category summary and a timestamped quote number.
package quote

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotepipe/quotepipe/model"
)

var hundred = decimal.NewFromInt(100)

// Aggregator builds quotes. It is stateless between calls; the clock is
// injectable so quote numbers are reproducible in tests.
type Aggregator struct {
	taxPercent decimal.Decimal
	now        func() time.Time
}

// New returns an aggregator applying the given tax percentage. A nil clock
// defaults to time.Now.
func New(taxPercent decimal.Decimal, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{taxPercent: taxPercent, now: now}
}

// Assemble builds the quote for one email's priced lines. Line order is
// preserved exactly as given. The extra warnings (attachment- and page-level
// conditions not tied to any one record) are prepended to the per-record
// warnings collected from the lines.
func (a *Aggregator) Assemble(lines []model.PricedLine, extra []model.Warning) model.Quote {
	generatedAt := a.now()

	q := model.Quote{
		Number:      "QT-" + generatedAt.Format("20060102-150405"),
		GeneratedAt: generatedAt,
		Lines:       lines,
		TaxPercent:  a.taxPercent,
		Summary: model.Summary{
			ProductCount: len(lines),
			Categories:   make(map[string]model.CategoryTotals),
		},
	}
	q.Warnings = append(q.Warnings, extra...)

	vendorTotal := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Product.Quantity))
		vendorCost := line.Product.UnitCost.Mul(qty)

		q.Subtotal = q.Subtotal.Add(line.LineTotal)
		vendorTotal = vendorTotal.Add(vendorCost)

		ct := q.Summary.Categories[line.Product.Category]
		ct.Count++
		ct.VendorTotal = ct.VendorTotal.Add(vendorCost)
		ct.SellingTotal = ct.SellingTotal.Add(line.LineTotal)
		ct.MarginTotal = ct.MarginTotal.Add(line.LineTotal.Sub(vendorCost))
		q.Summary.Categories[line.Product.Category] = ct

		q.Warnings = append(q.Warnings, line.Product.Warnings...)
	}

	q.Tax = q.Subtotal.Mul(a.taxPercent).Div(hundred).RoundBank(2)
	q.GrandTotal = q.Subtotal.Add(q.Tax)

	q.Summary.TotalVendorCost = vendorTotal.RoundBank(2)
	q.Summary.TotalMargin = q.Subtotal.Sub(q.Summary.TotalVendorCost)
	if vendorTotal.IsPositive() {
		q.Summary.AverageMarginPercent = q.Summary.TotalMargin.Div(vendorTotal).Mul(hundred).RoundBank(2)
	}

	return q
}
