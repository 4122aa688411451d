// Package format provides attachment format detection for the quote
// pipeline. Detection prefers content sniffing over the declared mime-type,
// and the mime-type over the filename extension, since vendor mail clients
// routinely mislabel attachments.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a supported attachment format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// XLSX indicates a Microsoft Excel (.xlsx) spreadsheet.
	XLSX
	// PDF indicates a PDF document.
	PDF
	// HTML indicates an HTML document.
	HTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case XLSX:
		return "XLSX"
	case PDF:
		return "PDF"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
	mimeHTML = "text/html"
)

// Detect identifies an attachment's format from its content, declared
// mime-type and filename, in that order of trust.
func Detect(filename, mimeType string, content []byte) Format {
	if f := sniff(content, filename, mimeType); f != Unknown {
		return f
	}
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case mimeXLSX:
		return XLSX
	case mimePDF:
		return PDF
	case mimeHTML:
		return HTML
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return XLSX
	case ".pdf":
		return PDF
	case ".html", ".htm":
		return HTML
	}
	return Unknown
}

// sniff inspects magic bytes. A ZIP container is only reported as XLSX when
// the mime-type or extension agrees, since .docx and .zip share the
// signature.
func sniff(content []byte, filename, mimeType string) Format {
	if len(content) < 4 {
		return Unknown
	}
	if bytes.HasPrefix(content, []byte("%PDF-")) {
		return PDF
	}
	if bytes.HasPrefix(content, []byte("PK\x03\x04")) {
		ext := strings.ToLower(filepath.Ext(filename))
		if ext == ".xlsx" || strings.EqualFold(strings.TrimSpace(mimeType), mimeXLSX) {
			return XLSX
		}
		// A bare ZIP claiming to be a spreadsheet workbook.
		if bytes.Contains(content, []byte("xl/workbook.xml")) {
			return XLSX
		}
		return Unknown
	}
	head := bytes.ToLower(content)
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.Contains(head, []byte("<html")) || bytes.Contains(head, []byte("<!doctype html")) || bytes.Contains(head, []byte("<table")) {
		return HTML
	}
	return Unknown
}
