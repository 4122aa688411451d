// Package pricing applies configured margin rules to unified product
// records. Resolution is category-based with quantity-tier overrides and an
// optional minimum margin amount per rule; records whose category matches no
// rule get the global default margin.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrBadRule is wrapped by every rule validation failure.
var ErrBadRule = errors.New("invalid margin rule")

// Tier overrides a rule's margin at or above a quantity threshold.
type Tier struct {
	MinQuantity   int
	MarginPercent decimal.Decimal
}

// MarginRule prices one product category.
type MarginRule struct {
	// Category is matched case-insensitively against record categories.
	Category string

	// MarginPercent is the base margin. Tiers override it by quantity.
	MarginPercent decimal.Decimal

	// MinMarginAmount, when positive, is a per-unit floor on the margin in
	// vendor currency. It is applied after tier resolution.
	MinMarginAmount decimal.Decimal

	// Tiers holds quantity-based overrides; the highest threshold at or
	// below the record's quantity wins.
	Tiers []Tier
}

// RuleSet is a validated, immutable set of margin rules plus the global
// default margin. Build one with NewRuleSet.
type RuleSet struct {
	defaultMargin decimal.Decimal
	rules         map[string]MarginRule
}

// minMargin is the floor for any margin percentage. A margin below -100%
// would produce a negative selling price.
var minMargin = decimal.NewFromInt(-100)

// NewRuleSet validates the rules and returns an immutable set. Validation
// failures are fatal: a malformed rule silently mispricing every quote is
// worse than refusing to start.
func NewRuleSet(defaultMargin decimal.Decimal, rules []MarginRule) (*RuleSet, error) {
	if defaultMargin.LessThan(minMargin) {
		return nil, fmt.Errorf("%w: default margin %s below -100%%", ErrBadRule, defaultMargin)
	}

	byCategory := make(map[string]MarginRule, len(rules))
	for _, rule := range rules {
		cat := strings.ToLower(strings.TrimSpace(rule.Category))
		if cat == "" {
			return nil, fmt.Errorf("%w: empty category", ErrBadRule)
		}
		if _, dup := byCategory[cat]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrBadRule, cat)
		}
		if rule.MarginPercent.LessThan(minMargin) {
			return nil, fmt.Errorf("%w: category %q margin %s below -100%%", ErrBadRule, cat, rule.MarginPercent)
		}
		if rule.MinMarginAmount.IsNegative() {
			return nil, fmt.Errorf("%w: category %q negative minimum margin amount", ErrBadRule, cat)
		}

		seen := make(map[int]bool, len(rule.Tiers))
		for _, tier := range rule.Tiers {
			if tier.MinQuantity < 1 {
				return nil, fmt.Errorf("%w: category %q tier threshold %d below 1", ErrBadRule, cat, tier.MinQuantity)
			}
			if seen[tier.MinQuantity] {
				return nil, fmt.Errorf("%w: category %q duplicate tier threshold %d", ErrBadRule, cat, tier.MinQuantity)
			}
			if tier.MarginPercent.LessThan(minMargin) {
				return nil, fmt.Errorf("%w: category %q tier %d margin %s below -100%%", ErrBadRule, cat, tier.MinQuantity, tier.MarginPercent)
			}
			seen[tier.MinQuantity] = true
		}

		// Highest threshold first, so resolution is a single forward scan.
		tiers := make([]Tier, len(rule.Tiers))
		copy(tiers, rule.Tiers)
		sort.Slice(tiers, func(i, j int) bool {
			return tiers[i].MinQuantity > tiers[j].MinQuantity
		})
		rule.Category = cat
		rule.Tiers = tiers
		byCategory[cat] = rule
	}

	return &RuleSet{defaultMargin: defaultMargin, rules: byCategory}, nil
}

// DefaultMargin returns the global default margin percentage.
func (rs *RuleSet) DefaultMargin() decimal.Decimal {
	return rs.defaultMargin
}

// resolve returns the effective margin rule for a category and quantity: the
// rule's name, the tier-resolved margin percentage, and the per-unit minimum
// margin amount. A category with no rule resolves to the default margin.
func (rs *RuleSet) resolve(category string, quantity int) (name string, percent, minAmount decimal.Decimal) {
	rule, ok := rs.rules[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return "", rs.defaultMargin, decimal.Zero
	}
	percent = rule.MarginPercent
	for _, tier := range rule.Tiers {
		if quantity >= tier.MinQuantity {
			percent = tier.MarginPercent
			break
		}
	}
	return rule.Category, percent, rule.MinMarginAmount
}
