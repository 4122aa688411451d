package model

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// UncategorizedCategory is the category assigned to records with no explicit
// category field. The pricing engine falls back to the global default margin
// for it unless a rule matches it by name.
const UncategorizedCategory = "uncategorized"

// ProductRecord is the canonical, deduplicated line item produced by the
// unifier. It is never mutated after creation: the pricing engine reads it
// and produces a new PricedLine.
type ProductRecord struct {
	// SKU is the vendor part number. When no source row carried one, a
	// deterministic synthetic SKU is assigned and Synthesized is set.
	SKU         string
	Synthesized bool

	Description string
	// Lang tags the description's language, detected per record.
	Lang language.Tag

	// Quantity is always >= 1. A defaulted quantity carries a
	// WarnQuantityDefaulted warning.
	Quantity int

	// UnitCost is the vendor's per-unit cost in vendor currency, >= 0.
	UnitCost decimal.Decimal

	// Category is the resolved category, or UncategorizedCategory.
	Category string

	// Confidence is the best confidence among contributing rows.
	Confidence Confidence

	// Sources lists the provenance of every RawRow merged into this
	// record, in merge order.
	Sources []Provenance

	// Warnings holds recoverable conditions attached to this record.
	Warnings []Warning
}
