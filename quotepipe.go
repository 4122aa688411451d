// Package quotepipe turns vendor quotation emails into priced customer
// quotes. Attachments and inline body tables are extracted concurrently by
// format-specific adapters, deduplicated into canonical product records,
// priced through configured margin rules and assembled into a single Quote.
//
// Each call to Process handles exactly one email and shares no state with
// any other call. Recoverable extraction problems become structured warnings
// on the quote; only configuration errors and context cancellation are
// returned as errors.
package quotepipe

// Attachment is one file attached to an email. The content is held in
// memory; the pipeline never touches the filesystem.
type Attachment struct {
	Filename string
	MimeType string
	Content  []byte
}

// Email is the pipeline's input: one vendor email, already parsed out of
// whatever transport delivered it.
type Email struct {
	BodyText    string
	BodyHTML    string
	Attachments []Attachment
}
