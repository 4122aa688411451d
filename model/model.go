// Package model defines the data types shared by every stage of the quote
// pipeline: adapter output (RawRow), unified line items (ProductRecord),
// priced output (PricedLine) and the final Quote.
//
// Values flow strictly forward: adapters produce RawRows, the unifier folds
// them into ProductRecords, the pricing engine annotates them into
// PricedLines and the aggregator assembles the Quote. Nothing in the
// pipeline mutates a value after handing it to the next stage.
package model

import (
	"fmt"

	"github.com/quotepipe/quotepipe/numeric"
)

// Source identifies which adapter produced a RawRow. The numeric order is
// the merge tie-break priority: when two rows of equal confidence describe
// the same line item, the higher Source wins per field.
type Source int

const (
	// SourceUnknown is the zero value; rows should never carry it.
	SourceUnknown Source = iota
	// SourceInline marks rows reconstructed from a message body.
	SourceInline
	// SourcePDFOCR marks rows recovered by OCR from scanned PDF pages.
	SourcePDFOCR
	// SourcePDFText marks rows extracted from a PDF's embedded text layer.
	SourcePDFText
	// SourceSpreadsheet marks rows read from spreadsheet cells.
	SourceSpreadsheet
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceSpreadsheet:
		return "spreadsheet"
	case SourcePDFText:
		return "pdf-text"
	case SourcePDFOCR:
		return "pdf-ocr"
	case SourceInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Confidence marks how well-structured the extraction of a row was.
type Confidence int

const (
	// ConfidenceLow marks heuristic or partial extraction: missing header
	// match, unparseable quantity or price, OCR-derived text.
	ConfidenceLow Confidence = iota
	// ConfidenceHigh marks extraction from an explicitly structured source
	// with a matched header row.
	ConfidenceHigh
)

// String returns the string representation of the confidence level.
func (c Confidence) String() string {
	if c == ConfidenceHigh {
		return "high"
	}
	return "low"
}

// Provenance records where a RawRow came from, precisely enough to audit a
// merged record back to its source positions.
type Provenance struct {
	Source Source
	File   string // attachment filename, "" for body content
	Sheet  string // spreadsheet sheet name, "" otherwise
	Page   int    // 1-indexed PDF page, 0 otherwise
	Index  int    // 0-indexed position within the adapter's output
}

// String renders the provenance in a compact, human-readable form.
func (p Provenance) String() string {
	loc := p.File
	switch {
	case p.Sheet != "":
		loc = fmt.Sprintf("%s!%s", p.File, p.Sheet)
	case p.Page > 0:
		loc = fmt.Sprintf("%s p.%d", p.File, p.Page)
	case loc == "":
		loc = "body"
	}
	return fmt.Sprintf("%s:%s[%d]", p.Source, loc, p.Index)
}

// RawRow is one adapter's best-effort, provenance-tagged guess at a single
// line item. All fields are raw text exactly as they appeared in the source;
// an empty string means the field was absent. RawRows are immutable once
// produced.
type RawRow struct {
	Provenance Provenance
	Confidence Confidence

	// Loosely identified fields, raw text.
	SKU         string
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
	Category    string

	// Raw is the original text fragment the row was extracted from,
	// retained for audit.
	Raw string

	// Locale is the numeric convention detected from the surrounding
	// document, used when parsing Quantity/UnitPrice/Total.
	Locale numeric.Locale
}

// Empty reports whether the row carries no reconcilable line-item
// information at all: no SKU, no description and no price.
func (r RawRow) Empty() bool {
	return r.SKU == "" && r.Description == "" && r.UnitPrice == "" && r.Total == ""
}
