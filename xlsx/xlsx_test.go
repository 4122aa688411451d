package xlsx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/quotepipe/quotepipe/fields"
	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/numeric"
)

// buildWorkbook assembles a minimal in-memory XLSX workbook. Worksheets use
// conventional part names so no relationships file is needed. Cells are
// written as inline strings; a value prefixed with "#" becomes a typed
// number cell instead.
func buildWorkbook(t *testing.T, sheets ...[][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`)

	var refs strings.Builder
	for i := range sheets {
		fmt.Fprintf(&refs, `<sheet name="Sheet%d" sheetId="%d"/>`, i+1, i+1)
	}
	write("xl/workbook.xml", `<?xml version="1.0"?><workbook><sheets>`+refs.String()+`</sheets></workbook>`)

	for i, rows := range sheets {
		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0"?><worksheet><sheetData>`)
		for r, row := range rows {
			fmt.Fprintf(&sb, `<row r="%d">`, r+1)
			for c, val := range row {
				if val == "" {
					continue
				}
				if strings.HasPrefix(val, "#") {
					fmt.Fprintf(&sb, `<c r="%s%d"><v>%s</v></c>`, colName(c), r+1, val[1:])
					continue
				}
				fmt.Fprintf(&sb, `<c r="%s%d" t="inlineStr"><is><t>%s</t></is></c>`, colName(c), r+1, xmlEscape(val))
			}
			sb.WriteString(`</row>`)
		}
		sb.WriteString(`</sheetData></worksheet>`)
		write(fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1), sb.String())
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing workbook: %v", err)
	}
	return buf.Bytes()
}

func colName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func TestOpenBytes(t *testing.T) {
	content := buildWorkbook(t, [][]string{
		{"SKU", "Description"},
		{"SRV-100", "Dell Server"},
	})
	r, err := OpenBytes(content)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if r.SheetCount() != 1 {
		t.Fatalf("sheet count = %d, want 1", r.SheetCount())
	}
	sheet, err := r.Sheet(0)
	if err != nil {
		t.Fatalf("Sheet(0): %v", err)
	}
	if got := sheet.RowStrings(1); got[0] != "SRV-100" || got[1] != "Dell Server" {
		t.Errorf("row 1 = %v", got)
	}
}

func TestOpenBytesCorrupt(t *testing.T) {
	if _, err := OpenBytes([]byte("not a zip archive")); err == nil {
		t.Fatal("expected error for corrupt content")
	}
	// Valid ZIP, not a workbook.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("readme.txt")
	w.Write([]byte("hello"))
	zw.Close()
	if _, err := OpenBytes(buf.Bytes()); err == nil {
		t.Fatal("expected error for non-workbook ZIP")
	}
}

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		ref     string
		col     int
		row     int
		wantErr bool
	}{
		{"A1", 0, 0, false},
		{"B2", 1, 1, false},
		{"Z10", 25, 9, false},
		{"AA1", 26, 0, false},
		{"", 0, 0, true},
		{"123", 0, 0, true},
		{"ABC", 0, 0, true},
		{"A0", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			col, row, err := ParseCellRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCellRef(%q) err = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err == nil && (col != tt.col || row != tt.row) {
				t.Errorf("ParseCellRef(%q) = (%d, %d), want (%d, %d)", tt.ref, col, row, tt.col, tt.row)
			}
		})
	}
}

func TestAdapterExtract(t *testing.T) {
	content := buildWorkbook(t, [][]string{
		{"Acme Distribution Ltd."},
		{"Quotation #1042"},
		{"SKU", "Description", "Qty", "Unit Price", "Category"},
		{"SRV-100", "Dell Server R640", "2", "500.00", "Servers"},
		{"NET-20", "24-port Switch", "5", "120.00", "Networking"},
		{"Total", "", "", "1600.00"},
	})

	a := NewAdapter(fields.Default())
	rows, warnings, err := a.Extract(content, "quote.xlsx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}

	first := rows[0]
	if first.SKU != "SRV-100" || first.Quantity != "2" || first.UnitPrice != "500.00" || first.Category != "Servers" {
		t.Errorf("first row = %+v", first)
	}
	if first.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %v, want high", first.Confidence)
	}
	if first.Provenance.Source != model.SourceSpreadsheet || first.Provenance.File != "quote.xlsx" || first.Provenance.Sheet != "Sheet1" {
		t.Errorf("provenance = %+v", first.Provenance)
	}
	if rows[1].Provenance.Index != 1 {
		t.Errorf("second row index = %d, want 1", rows[1].Provenance.Index)
	}
}

func TestAdapterTypedNumberCellsKeepDotLocale(t *testing.T) {
	// Typed number cells carry a canonical dot decimal no matter how the
	// author formats numbers. A comma-locale price held as a string elsewhere
	// in the sheet must not reinterpret "1234.56" as 123456.
	content := buildWorkbook(t, [][]string{
		{"SKU", "Description", "Qty", "Unit Price"},
		{"SRV-100", "Dell Server", "2", "#1234.56"},
		{"", "Handling fee", "1", "12,50"},
	})

	a := NewAdapter(fields.Default())
	rows, _, err := a.Extract(content, "quote.xlsx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}

	if rows[0].Locale != numeric.LocaleDot {
		t.Errorf("typed-cell row locale = %v, want dot", rows[0].Locale)
	}
	if p, ok := numeric.ParsePrice(rows[0].UnitPrice, rows[0].Locale); !ok || p.String() != "1234.56" {
		t.Errorf("typed price parsed as %s (ok=%v), want 1234.56", p, ok)
	}
	if rows[0].Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %v, want high", rows[0].Confidence)
	}

	// The string-priced row still follows the sheet's comma convention.
	if rows[1].Locale != numeric.LocaleComma {
		t.Errorf("string-cell row locale = %v, want comma", rows[1].Locale)
	}
	if p, ok := numeric.ParsePrice(rows[1].UnitPrice, rows[1].Locale); !ok || p.String() != "12.5" {
		t.Errorf("string price parsed as %s (ok=%v), want 12.5", p, ok)
	}
}

func TestAdapterExtractHebrewHeader(t *testing.T) {
	content := buildWorkbook(t, [][]string{
		{`מק"ט`, "תיאור", "כמות", "מחיר"},
		{"SRV-100", "שרת דל", "2", "1,500.00"},
	})
	a := NewAdapter(fields.Default())
	rows, _, err := a.Extract(content, "quote.xlsx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Description != "שרת דל" || rows[0].UnitPrice != "1,500.00" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestAdapterSheetWithoutHeader(t *testing.T) {
	content := buildWorkbook(t,
		[][]string{
			{"SKU", "Description", "Qty", "Unit Price"},
			{"SRV-100", "Dell Server", "2", "500.00"},
		},
		[][]string{
			{"Notes"},
			{"Delivery within 14 days"},
		},
	)
	a := NewAdapter(fields.Default())
	rows, warnings, err := a.Extract(content, "quote.xlsx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
	if len(warnings) != 1 || warnings[0].Kind != model.WarnSheetSkipped {
		t.Errorf("warnings = %v, want one sheet_skipped", warnings)
	}
}

func TestAdapterCorruptWorkbook(t *testing.T) {
	a := NewAdapter(fields.Default())
	if _, _, err := a.Extract([]byte("garbage"), "broken.xlsx"); err == nil {
		t.Fatal("expected error for corrupt workbook")
	}
}
