package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quotepipe/quotepipe/model"
)

func fixedClock() func() time.Time {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return ts }
}

func line(sku, category string, qty int, unitCost, lineTotal string) model.PricedLine {
	return model.PricedLine{
		Product: model.ProductRecord{
			SKU:      sku,
			Quantity: qty,
			UnitCost: decimal.RequireFromString(unitCost),
			Category: category,
		},
		LineTotal: decimal.RequireFromString(lineTotal),
	}
}

func TestAssemble(t *testing.T) {
	agg := New(decimal.NewFromInt(17), fixedClock())
	lines := []model.PricedLine{
		line("SRV-100", "servers", 2, "500", "1120"),   // 12% margin
		line("NET-20", "networking", 5, "120", "690"),  // 15% margin
	}

	q := agg.Assemble(lines, nil)

	if q.Number != "QT-20260314-092653" {
		t.Errorf("quote number = %q", q.Number)
	}
	if !q.GeneratedAt.Equal(fixedClock()()) {
		t.Errorf("generated at = %v", q.GeneratedAt)
	}
	if q.Subtotal.String() != "1810" {
		t.Errorf("subtotal = %s, want 1810", q.Subtotal)
	}
	// 1810 * 17% = 307.70
	if q.Tax.String() != "307.7" {
		t.Errorf("tax = %s, want 307.7", q.Tax)
	}
	if q.GrandTotal.String() != "2117.7" {
		t.Errorf("grand total = %s, want 2117.7", q.GrandTotal)
	}

	// Vendor cost: 2*500 + 5*120 = 1600; margin = 210.
	if q.Summary.TotalVendorCost.String() != "1600" {
		t.Errorf("vendor cost = %s, want 1600", q.Summary.TotalVendorCost)
	}
	if q.Summary.TotalMargin.String() != "210" {
		t.Errorf("total margin = %s, want 210", q.Summary.TotalMargin)
	}
	// 210 / 1600 * 100 = 13.125 -> 13.12 banker's.
	if q.Summary.AverageMarginPercent.String() != "13.12" {
		t.Errorf("average margin = %s, want 13.12", q.Summary.AverageMarginPercent)
	}
	if q.Summary.ProductCount != 2 {
		t.Errorf("product count = %d", q.Summary.ProductCount)
	}

	srv := q.Summary.Categories["servers"]
	if srv.Count != 1 || srv.VendorTotal.String() != "1000" || srv.SellingTotal.String() != "1120" || srv.MarginTotal.String() != "120" {
		t.Errorf("servers totals = %+v", srv)
	}
}

func TestAssemblePreservesLineOrder(t *testing.T) {
	agg := New(decimal.Zero, fixedClock())
	lines := []model.PricedLine{
		line("B-2", "x", 1, "2", "2"),
		line("A-1", "x", 1, "1", "1"),
	}
	q := agg.Assemble(lines, nil)
	if q.Lines[0].Product.SKU != "B-2" || q.Lines[1].Product.SKU != "A-1" {
		t.Errorf("line order changed: %s, %s", q.Lines[0].Product.SKU, q.Lines[1].Product.SKU)
	}
}

func TestAssembleNoTax(t *testing.T) {
	agg := New(decimal.Zero, fixedClock())
	q := agg.Assemble([]model.PricedLine{line("A-1", "x", 1, "100", "115")}, nil)
	if !q.Tax.IsZero() {
		t.Errorf("tax = %s, want 0", q.Tax)
	}
	if !q.GrandTotal.Equal(q.Subtotal) {
		t.Errorf("grand total = %s, subtotal = %s", q.GrandTotal, q.Subtotal)
	}
}

func TestAssembleCollectsWarnings(t *testing.T) {
	agg := New(decimal.Zero, fixedClock())
	l := line("A-1", "x", 1, "0", "0")
	l.Product.Warnings = []model.Warning{{Kind: model.WarnNoPrice, Message: "no cost"}}
	extra := []model.Warning{{Kind: model.WarnAttachmentSkipped, Message: "broken.pdf"}}

	q := agg.Assemble([]model.PricedLine{l}, extra)
	if len(q.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(q.Warnings))
	}
	if q.Warnings[0].Kind != model.WarnAttachmentSkipped || q.Warnings[1].Kind != model.WarnNoPrice {
		t.Errorf("warnings = %v", q.Warnings)
	}
}

func TestAssembleEmpty(t *testing.T) {
	agg := New(decimal.NewFromInt(17), fixedClock())
	q := agg.Assemble(nil, nil)
	if q.Summary.ProductCount != 0 || !q.Subtotal.IsZero() || !q.GrandTotal.IsZero() {
		t.Errorf("empty quote = %+v", q)
	}
	if !q.Summary.AverageMarginPercent.IsZero() {
		t.Errorf("average margin = %s, want 0 with no vendor cost", q.Summary.AverageMarginPercent)
	}
}
