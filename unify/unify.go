// Package unify folds the raw rows produced by every source adapter into a
// deduplicated set of canonical product records. Rows describing the same
// line item, matched by vendor SKU or by description and cost when no SKU
// exists, merge field by field, with higher-confidence and
// higher-priority sources winning conflicts and lower ones backfilling gaps.
package unify

import (
	"fmt"
	"hash/fnv"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/numeric"
)

// candidate is one raw row with its numeric fields parsed out.
type candidate struct {
	row model.RawRow

	sku      string
	desc     string
	quantity int
	hasQty   bool
	cost     decimal.Decimal
	hasCost  bool
	category string

	warnings []model.Warning
}

// Unify merges raw rows into canonical product records. Rows carrying no
// SKU, no description and no price are dropped. Output order is the order in
// which each line item was first seen in the input.
func Unify(rows []model.RawRow) []model.ProductRecord {
	groups := make(map[string][]candidate)
	var order []string

	for _, row := range rows {
		if row.Empty() {
			continue
		}
		c := canonicalize(row)
		k := key(c)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	records := make([]model.ProductRecord, 0, len(order))
	for _, k := range order {
		records = append(records, merge(groups[k]))
	}
	return records
}

// canonicalize parses a raw row's text fields. An unparseable quantity or
// price is recorded as a warning and treated as absent, never as zero. A
// missing unit price is derived from the line total when the quantity is
// known.
func canonicalize(row model.RawRow) candidate {
	c := candidate{
		row:      row,
		sku:      normalizeSKU(row.SKU),
		desc:     collapseSpace(row.Description),
		category: strings.ToLower(strings.TrimSpace(row.Category)),
	}

	if row.Quantity != "" {
		if q, ok := numeric.ParseQuantity(row.Quantity); ok {
			c.quantity, c.hasQty = q, true
		} else {
			c.warnings = append(c.warnings, model.Warning{
				Kind:       model.WarnRowUnparsed,
				Message:    fmt.Sprintf("unparseable quantity %q", row.Quantity),
				Provenance: row.Provenance,
			})
		}
	}

	if row.UnitPrice != "" {
		if p, ok := numeric.ParsePrice(row.UnitPrice, row.Locale); ok {
			c.cost, c.hasCost = p, true
		} else {
			c.warnings = append(c.warnings, model.Warning{
				Kind:       model.WarnRowUnparsed,
				Message:    fmt.Sprintf("unparseable unit price %q", row.UnitPrice),
				Provenance: row.Provenance,
			})
		}
	}

	if !c.hasCost && row.Total != "" && c.hasQty {
		if t, ok := numeric.ParsePrice(row.Total, row.Locale); ok {
			c.cost = t.Div(decimal.NewFromInt(int64(c.quantity)))
			c.hasCost = true
			c.warnings = append(c.warnings, model.Warning{
				Kind:       model.WarnPriceDerived,
				Message:    fmt.Sprintf("unit price derived from total %q / %d", row.Total, c.quantity),
				Provenance: row.Provenance,
			})
		}
	}

	return c
}

// key derives the grouping key for one candidate. A vendor SKU is
// authoritative and matched with whitespace and punctuation stripped, so
// "SRV-100" and "srv 100" are the same item; SKU-less rows group by their
// word-normalized description plus cost, so two differently-priced unnamed
// items never merge.
func key(c candidate) string {
	if c.sku != "" {
		return "sku:" + foldKey(c.sku)
	}
	words := strings.Fields(strings.ToLower(c.desc))
	sort.Strings(words)
	words = slices.Compact(words)
	cost := "-"
	if c.hasCost {
		cost = c.cost.StringFixed(2)
	}
	return "desc:" + strings.Join(words, " ") + "|" + cost
}

// foldKey reduces a SKU to its letters and digits, lowercased.
func foldKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// merge folds one group of candidates into a product record. Candidates are
// ranked by confidence, then source priority, then input position; each
// field takes its value from the best-ranked candidate that has one.
func merge(group []candidate) model.ProductRecord {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.row.Confidence != b.row.Confidence {
			return a.row.Confidence > b.row.Confidence
		}
		return a.row.Provenance.Source > b.row.Provenance.Source
	})

	rec := model.ProductRecord{
		Category: model.UncategorizedCategory,
	}

	for _, c := range group {
		if rec.SKU == "" && c.sku != "" {
			rec.SKU = c.sku
		}
		if rec.Description == "" && c.desc != "" {
			rec.Description = c.desc
		}
		if rec.Quantity == 0 && c.hasQty {
			rec.Quantity = c.quantity
		}
		// A zero cost counts as missing: any candidate carrying a real
		// price fills it, even from a lower-ranked source.
		if rec.UnitCost.IsZero() && c.hasCost {
			rec.UnitCost = c.cost
		}
		if rec.Category == model.UncategorizedCategory && c.category != "" {
			rec.Category = c.category
		}
		if c.row.Confidence > rec.Confidence {
			rec.Confidence = c.row.Confidence
		}
		rec.Sources = append(rec.Sources, c.row.Provenance)
		rec.Warnings = append(rec.Warnings, c.warnings...)
	}

	if rec.Quantity == 0 {
		rec.Quantity = 1
		rec.Warnings = append(rec.Warnings, model.Warning{
			Kind:       model.WarnQuantityDefaulted,
			Message:    "no source row carried a quantity; defaulted to 1",
			Provenance: group[0].row.Provenance,
		})
	}

	if rec.SKU == "" {
		rec.SKU = syntheticSKU(key(group[0]))
		rec.Synthesized = true
	}

	rec.Lang = detectLanguage(rec.Description)
	return rec
}

// normalizeSKU trims and upper-cases a vendor part number so "srv-100" and
// "SRV-100 " match.
func normalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// syntheticSKU derives a stable placeholder SKU from the grouping key, so
// re-processing the same email assigns the same SKU to the same item.
func syntheticSKU(key string) string {
	h := fnv.New64a()
	h.Write([]byte(key))
	return fmt.Sprintf("AUTO-%08X", h.Sum64()&0xFFFFFFFF)
}

// detectLanguage tags a description as Hebrew when it contains any Hebrew
// letters, English when it contains Latin letters, and undetermined
// otherwise.
func detectLanguage(desc string) language.Tag {
	latin := false
	for _, r := range desc {
		if unicode.Is(unicode.Hebrew, r) {
			return language.Hebrew
		}
		if unicode.IsLetter(r) {
			latin = true
		}
	}
	if latin {
		return language.English
	}
	return language.Und
}
