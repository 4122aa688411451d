package model

import (
	"fmt"
	"strings"
)

// WarningKind classifies a recoverable condition encountered while
// processing one email. Warnings are structured data attached to the
// affected ProductRecord or to the Quote, not just log lines, so a reviewer
// can tell a confidently-priced quote from one built on partial data.
type WarningKind string

const (
	// WarnRowUnparsed marks a row whose quantity or price text could not
	// be parsed; the row survives with the field treated as missing.
	WarnRowUnparsed WarningKind = "row_unparsed"
	// WarnQuantityDefaulted marks a record whose quantity was absent from
	// every contributing row and defaulted to 1.
	WarnQuantityDefaulted WarningKind = "quantity_defaulted"
	// WarnPriceDerived marks a row whose unit price was derived from a
	// line total divided by quantity.
	WarnPriceDerived WarningKind = "price_derived"
	// WarnPageSkipped marks a PDF page that contributed zero rows because
	// OCR failed or timed out.
	WarnPageSkipped WarningKind = "page_skipped"
	// WarnAttachmentSkipped marks an attachment that contributed zero rows
	// because it was unreadable or of an unsupported format.
	WarnAttachmentSkipped WarningKind = "attachment_skipped"
	// WarnSheetSkipped marks a spreadsheet sheet with no recognizable
	// header row.
	WarnSheetSkipped WarningKind = "sheet_skipped"
	// WarnNoPrice marks a record that reached pricing with no unit cost;
	// it is priced at zero cost and needs manual review.
	WarnNoPrice WarningKind = "no_price"
)

// Warning is a structured, recoverable condition tied to a source location.
type Warning struct {
	Kind       WarningKind
	Message    string
	Provenance Provenance
}

// String renders the warning for display.
func (w Warning) String() string {
	if w.Provenance.Source == SourceUnknown && w.Provenance.File == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.Provenance)
}

// FormatWarnings formats a slice of warnings as a multi-line string suitable
// for logging or display. Returns "" for an empty slice.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "- " + w.String()
	}
	return strings.Join(lines, "\n")
}
