// Package fields resolves table columns to line-item field roles by matching
// header text against configurable synonym sets. Column order in a source
// document is irrelevant: only the header text decides what a column means.
package fields

import "strings"

// Role identifies what a table column contains.
type Role int

const (
	// RoleNone means the column matched no synonym.
	RoleNone Role = iota
	// RoleSKU is the vendor part number column.
	RoleSKU
	// RoleDescription is the item description column.
	RoleDescription
	// RoleQuantity is the quantity column.
	RoleQuantity
	// RoleTotal is the line-total column.
	RoleTotal
	// RoleUnitPrice is the per-unit price column.
	RoleUnitPrice
	// RoleCategory is the product category column.
	RoleCategory
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case RoleSKU:
		return "sku"
	case RoleDescription:
		return "description"
	case RoleQuantity:
		return "quantity"
	case RoleUnitPrice:
		return "unit_price"
	case RoleTotal:
		return "total"
	case RoleCategory:
		return "category"
	default:
		return "none"
	}
}

// matchOrder is the role precedence when a header cell could match more than
// one synonym set. RoleTotal is checked before RoleUnitPrice so "total
// price" never claims the unit-price role.
var matchOrder = []Role{RoleSKU, RoleDescription, RoleQuantity, RoleTotal, RoleUnitPrice, RoleCategory}

// Synonyms maps each role to the header texts that identify it. Matching is
// case-insensitive; see Match.
type Synonyms map[Role][]string

// Default returns the built-in synonym sets, covering the English and Hebrew
// header vocabularies seen in vendor quotations.
func Default() Synonyms {
	return Synonyms{
		RoleSKU:         {"sku", "part number", "part#", "item number", "product code", "item", "product", `מק"ט`, "מוצר"},
		RoleDescription: {"description", "item description", "desc", "תיאור"},
		RoleQuantity:    {"quantity", "qty", "amount", "כמות"},
		RoleUnitPrice:   {"unit price", "unit cost", "price", "cost", "מחיר יחידה", "מחיר"},
		RoleTotal:       {"line total", "total price", "total", "extended", `סה"כ`},
		RoleCategory:    {"category", "product category", "קטגוריה"},
	}
}

// Merge returns a copy of s with extra synonyms appended per role. It is
// used to extend the defaults from configuration.
func (s Synonyms) Merge(extra Synonyms) Synonyms {
	out := make(Synonyms, len(s))
	for role, names := range s {
		out[role] = append([]string(nil), names...)
	}
	for role, names := range extra {
		out[role] = append(out[role], names...)
	}
	return out
}

// Match resolves a single header cell to a role. An exact (case-insensitive,
// trimmed) match on any role wins first; otherwise a synonym contained
// within the header text wins, in matchOrder. Returns RoleNone when nothing
// matches.
func (s Synonyms) Match(header string) Role {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return RoleNone
	}
	for _, role := range matchOrder {
		for _, name := range s[role] {
			if h == strings.ToLower(name) {
				return role
			}
		}
	}
	// Substring pass: the longest matching synonym wins, so "item
	// description" resolves to the description role, not the "item" SKU
	// synonym. matchOrder breaks length ties.
	best, bestLen := RoleNone, 0
	for _, role := range matchOrder {
		for _, name := range s[role] {
			n := strings.ToLower(name)
			if strings.Contains(h, n) && len(n) > bestLen {
				best, bestLen = role, len(n)
			}
		}
	}
	return best
}

// Columns maps a role to its 0-indexed column position in one table.
type Columns map[Role]int

// MapHeader resolves every cell of a candidate header row. The score is the
// number of distinct roles matched; a row scoring at least HeaderScore is a
// header row. When two columns claim the same role the leftmost wins.
func (s Synonyms) MapHeader(cells []string) (Columns, int) {
	cols := make(Columns)
	for i, cell := range cells {
		role := s.Match(cell)
		if role == RoleNone {
			continue
		}
		if _, taken := cols[role]; !taken {
			cols[role] = i
		}
	}
	return cols, len(cols)
}

// HeaderScore is the minimum number of distinct matched roles for a row to
// be treated as a table header.
const HeaderScore = 2

// IsHeaderRow reports whether the cells look like a table header.
func (s Synonyms) IsHeaderRow(cells []string) bool {
	_, score := s.MapHeader(cells)
	return score >= HeaderScore
}

// Values holds the raw text of one data row, projected through a column
// mapping. Empty string means the column was absent or the cell was empty.
type Values struct {
	SKU         string
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
	Category    string
}

// Extract projects one data row through the column mapping.
func (c Columns) Extract(cells []string) Values {
	get := func(role Role) string {
		idx, ok := c[role]
		if !ok || idx < 0 || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}
	return Values{
		SKU:         get(RoleSKU),
		Description: get(RoleDescription),
		Quantity:    get(RoleQuantity),
		UnitPrice:   get(RoleUnitPrice),
		Total:       get(RoleTotal),
		Category:    get(RoleCategory),
	}
}

// summaryLabels mark rows that are totals or commentary riding in the SKU
// column, not real products.
var summaryLabels = []string{"total", "subtotal", "includes", "grand total"}

// IsSummaryLabel reports whether a SKU cell is a summary or commentary label
// rather than a part number.
func IsSummaryLabel(sku string) bool {
	s := strings.ToLower(strings.TrimSpace(sku))
	for _, label := range summaryLabels {
		if s == label || strings.HasPrefix(s, label+":") || strings.HasPrefix(s, label+" ") {
			return true
		}
	}
	return false
}

// IsHeaderEcho reports whether a SKU cell repeats a header synonym, which
// happens when a document restates its header mid-table.
func (s Synonyms) IsHeaderEcho(sku string) bool {
	h := strings.ToLower(strings.TrimSpace(sku))
	for _, name := range s[RoleSKU] {
		if h == strings.ToLower(name) {
			return true
		}
	}
	return false
}
