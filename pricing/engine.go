package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/quotepipe/quotepipe/model"
)

var hundred = decimal.NewFromInt(100)

// Price computes the priced line for one product record. The record is not
// modified; warnings raised here are attached to the returned line's copy.
//
// The margin percentage comes from the record's category rule after tier
// resolution; when the resulting per-unit margin falls below the rule's
// minimum margin amount, the amount floor wins and the effective percentage
// is recomputed from it. All money outputs are rounded once, to cents, with
// banker's rounding.
func (rs *RuleSet) Price(rec model.ProductRecord) model.PricedLine {
	name, percent, minAmount := rs.resolve(rec.Category, rec.Quantity)

	line := model.PricedLine{
		Product:      rec,
		RuleCategory: name,
	}

	if !rec.UnitCost.IsPositive() {
		line.Product.Warnings = appendWarning(rec.Warnings, model.Warning{
			Kind:    model.WarnNoPrice,
			Message: "no unit cost extracted; priced at zero, needs manual review",
		})
		line.MarginPercentApplied = percent
		return line
	}

	unitMargin := rec.UnitCost.Mul(percent).Div(hundred)
	if minAmount.IsPositive() && unitMargin.LessThan(minAmount) {
		unitMargin = minAmount
		percent = minAmount.Div(rec.UnitCost).Mul(hundred)
	}

	line.MarginPercentApplied = percent
	line.UnitSellingPrice = rec.UnitCost.Add(unitMargin).RoundBank(2)
	line.UnitMarginAmount = line.UnitSellingPrice.Sub(rec.UnitCost)
	line.LineTotal = line.UnitSellingPrice.Mul(decimal.NewFromInt(int64(rec.Quantity))).RoundBank(2)
	return line
}

// PriceAll prices every record, preserving order.
func (rs *RuleSet) PriceAll(records []model.ProductRecord) []model.PricedLine {
	lines := make([]model.PricedLine, len(records))
	for i, rec := range records {
		lines[i] = rs.Price(rec)
	}
	return lines
}

// appendWarning copies before appending so the source record's slice is
// never aliased by the priced line.
func appendWarning(warnings []model.Warning, w model.Warning) []model.Warning {
	out := make([]model.Warning, len(warnings), len(warnings)+1)
	copy(out, warnings)
	return append(out, w)
}
