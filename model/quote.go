package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricedLine is a ProductRecord annotated with the pricing engine's output.
// All money fields are rounded once, to minor-unit (cent) precision, using
// round-half-to-even.
type PricedLine struct {
	Product ProductRecord

	// RuleCategory names the margin rule that was applied, or "" when the
	// global default margin was used.
	RuleCategory string

	// MarginPercentApplied is the effective margin percentage, after tier
	// resolution and any minimum-margin floor.
	MarginPercentApplied decimal.Decimal

	// UnitMarginAmount is UnitSellingPrice - unit cost.
	UnitMarginAmount decimal.Decimal

	// UnitSellingPrice is unit cost * (1 + margin/100), rounded to cents.
	UnitSellingPrice decimal.Decimal

	// LineTotal is UnitSellingPrice * quantity, rounded to cents.
	LineTotal decimal.Decimal
}

// CategoryTotals is the per-category slice of a quote summary.
type CategoryTotals struct {
	Count        int
	VendorTotal  decimal.Decimal
	SellingTotal decimal.Decimal
	MarginTotal  decimal.Decimal
}

// Summary carries quote-level totals for review: what the vendor charges,
// what the customer is quoted, and the margin between them.
type Summary struct {
	TotalVendorCost      decimal.Decimal
	TotalMargin          decimal.Decimal
	AverageMarginPercent decimal.Decimal
	ProductCount         int
	Categories           map[string]CategoryTotals
}

// Quote is the terminal, immutable output artifact for one input email.
// Lines keep the unifier's first-seen order; they are never re-sorted.
type Quote struct {
	Number      string
	GeneratedAt time.Time

	Lines []PricedLine

	Subtotal   decimal.Decimal
	TaxPercent decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal

	Summary Summary

	// Warnings aggregates every recoverable condition from the run,
	// including per-record warnings. A quote with warnings was built on
	// partial data.
	Warnings []Warning
}
