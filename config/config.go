// Package config parses and validates the pipeline's YAML configuration:
// pricing rules, extraction tuning and logging.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"github.com/quotepipe/quotepipe/fields"
	"github.com/quotepipe/quotepipe/pricing"
)

// ErrInvalid is wrapped by every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// TierConfig is one quantity tier of a margin rule.
type TierConfig struct {
	MinQuantity int     `yaml:"min_quantity"`
	Margin      float64 `yaml:"margin"`
}

// RuleConfig is one category margin rule.
type RuleConfig struct {
	Category        string       `yaml:"category"`
	Margin          float64      `yaml:"margin"`
	MinMarginAmount float64      `yaml:"min_margin_amount"`
	Tiers           []TierConfig `yaml:"tiers"`
}

// PricingConfig configures the margin engine.
type PricingConfig struct {
	DefaultMarginPercent float64      `yaml:"default_margin_percent"`
	TaxPercent           float64      `yaml:"tax_percent"`
	MarginRules          []RuleConfig `yaml:"margin_rules"`
}

// ExtractionConfig tunes the source adapters.
type ExtractionConfig struct {
	// HeaderSynonyms extends the built-in header vocabulary, keyed by role
	// name: sku, description, quantity, unit_price, total, category.
	HeaderSynonyms map[string][]string `yaml:"header_synonyms"`

	// MinTextRows is the PDF scanned-document detection threshold.
	MinTextRows int `yaml:"min_text_rows"`

	// OCRLanguage is the Tesseract language string, e.g. "eng+heb".
	OCRLanguage string `yaml:"ocr_language"`

	// OCRPageTimeout bounds OCR time per PDF page.
	OCRPageTimeout Duration `yaml:"ocr_page_timeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Config is the root configuration document.
type Config struct {
	Pricing    PricingConfig    `yaml:"pricing"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Default returns the configuration used when no document is supplied.
func Default() *Config {
	return &Config{
		Pricing: PricingConfig{
			DefaultMarginPercent: 15,
		},
		Extraction: ExtractionConfig{
			MinTextRows:    1,
			OCRLanguage:    "eng",
			OCRPageTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load parses a YAML configuration document on top of the defaults and
// validates it.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// roleNames maps configuration keys to header roles.
var roleNames = map[string]fields.Role{
	"sku":         fields.RoleSKU,
	"description": fields.RoleDescription,
	"quantity":    fields.RoleQuantity,
	"unit_price":  fields.RoleUnitPrice,
	"total":       fields.RoleTotal,
	"category":    fields.RoleCategory,
}

// Validate checks the configuration for fatal mistakes. Pricing rules are
// validated by building them: a configuration that cannot produce a rule set
// must never reach the pipeline.
func (c *Config) Validate() error {
	if _, err := c.RuleSet(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for name := range c.Extraction.HeaderSynonyms {
		if _, ok := roleNames[strings.ToLower(name)]; !ok {
			return fmt.Errorf("%w: unknown header synonym role %q", ErrInvalid, name)
		}
	}
	if c.Extraction.MinTextRows < 0 {
		return fmt.Errorf("%w: negative min_text_rows", ErrInvalid)
	}
	if c.Extraction.OCRPageTimeout < 0 {
		return fmt.Errorf("%w: negative ocr_page_timeout", ErrInvalid)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: unknown logging format %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}

// RuleSet builds the validated pricing rule set from the configuration.
func (c *Config) RuleSet() (*pricing.RuleSet, error) {
	rules := make([]pricing.MarginRule, 0, len(c.Pricing.MarginRules))
	for _, rc := range c.Pricing.MarginRules {
		rule := pricing.MarginRule{
			Category:        rc.Category,
			MarginPercent:   decimal.NewFromFloat(rc.Margin),
			MinMarginAmount: decimal.NewFromFloat(rc.MinMarginAmount),
		}
		for _, tc := range rc.Tiers {
			rule.Tiers = append(rule.Tiers, pricing.Tier{
				MinQuantity:   tc.MinQuantity,
				MarginPercent: decimal.NewFromFloat(tc.Margin),
			})
		}
		rules = append(rules, rule)
	}
	return pricing.NewRuleSet(decimal.NewFromFloat(c.Pricing.DefaultMarginPercent), rules)
}

// Synonyms returns the header vocabulary: the defaults extended by any
// configured additions.
func (c *Config) Synonyms() fields.Synonyms {
	extra := make(fields.Synonyms)
	for name, names := range c.Extraction.HeaderSynonyms {
		if role, ok := roleNames[strings.ToLower(name)]; ok {
			extra[role] = names
		}
	}
	return fields.Default().Merge(extra)
}
