package pdfdoc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quotepipe/quotepipe/fields"
	"github.com/quotepipe/quotepipe/grid"
	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/numeric"
	"github.com/quotepipe/quotepipe/ocr"
)

// Options configures the PDF adapter.
type Options struct {
	// MinTextRows is the minimum number of rows the text layer must yield
	// before the document is accepted as digital; fewer triggers the OCR
	// fallback when image streams are present. Default 1.
	MinTextRows int

	// OCRLanguage is the Tesseract language string, e.g. "eng+heb".
	// Default "eng".
	OCRLanguage string

	// PageTimeout bounds a single page's OCR call. A page that exceeds it
	// contributes zero rows and a warning instead of stalling the
	// pipeline. Default 10s.
	PageTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MinTextRows <= 0 {
		o.MinTextRows = 1
	}
	if o.OCRLanguage == "" {
		o.OCRLanguage = "eng"
	}
	if o.PageTimeout <= 0 {
		o.PageTimeout = 10 * time.Second
	}
	return o
}

// Adapter is the PDF source adapter.
type Adapter struct {
	syn  fields.Synonyms
	opts Options

	// recognize runs OCR over one page image. Overridable in tests; the
	// default spins up a fresh gosseract client per page so an abandoned
	// (timed-out) call can never race the next page's.
	recognize func(lang string, image []byte) (string, error)
}

// NewAdapter returns a PDF adapter using the given header synonyms.
func NewAdapter(syn fields.Synonyms, opts Options) *Adapter {
	return &Adapter{
		syn:       syn,
		opts:      opts.withDefaults(),
		recognize: recognizePage,
	}
}

func recognizePage(lang string, image []byte) (string, error) {
	client, err := ocr.New()
	if err != nil {
		return "", err
	}
	defer client.Close()
	if err := client.SetLanguage(lang); err != nil {
		return "", err
	}
	return client.RecognizeImage(image)
}

// Extract reads one PDF attachment and returns its raw rows. The embedded
// text layer is tried first; a text-poor document with image streams is
// re-processed page by page through OCR. OCR failures and timeouts downgrade
// the affected page to zero rows. A non-nil error means the whole attachment
// was unreadable.
func (a *Adapter) Extract(ctx context.Context, content []byte, filename string) ([]model.RawRow, []model.Warning, error) {
	doc, err := open(content)
	if err != nil {
		return nil, nil, fmt.Errorf("reading PDF %s: %w", filename, err)
	}

	rows, warnings := a.textLayerRows(doc, filename)
	if len(rows) >= a.opts.MinTextRows || !doc.hasImageStreams() {
		return rows, warnings, nil
	}

	ocrRows, ocrWarnings := a.ocrRows(ctx, doc, filename, len(rows))
	return append(rows, ocrRows...), append(warnings, ocrWarnings...), nil
}

// textLayerRows reconstructs tables from every page's embedded text.
func (a *Adapter) textLayerRows(doc *document, filename string) ([]model.RawRow, []model.Warning) {
	type pageTables struct {
		page   int
		tables []grid.Table
	}

	var all []pageTables
	var samples []string
	for pageNr := 1; pageNr <= doc.pageCount(); pageNr++ {
		text := doc.pageText(pageNr)
		if text == "" {
			continue
		}
		tables := grid.Detect(text, a.syn)
		if len(tables) == 0 {
			continue
		}
		all = append(all, pageTables{page: pageNr, tables: tables})
		samples = append(samples, grid.NumericSamples(tables)...)
	}

	loc := numeric.DetectLocale(samples)

	var rows []model.RawRow
	for _, pt := range all {
		base := model.Provenance{
			Source: model.SourcePDFText,
			File:   filename,
			Page:   pt.page,
		}
		for _, t := range pt.tables {
			rows = append(rows, t.RawRows(a.syn, base, loc, len(rows))...)
		}
	}
	return rows, nil
}

// ocrRows recognizes each page image and reconstructs tables from the OCR
// text. Every OCR-derived row is low confidence by definition.
func (a *Adapter) ocrRows(ctx context.Context, doc *document, filename string, startIndex int) ([]model.RawRow, []model.Warning) {
	var rows []model.RawRow
	var warnings []model.Warning
	idx := startIndex

	for pageNr := 1; pageNr <= doc.pageCount(); pageNr++ {
		base := model.Provenance{
			Source: model.SourcePDFOCR,
			File:   filename,
			Page:   pageNr,
		}

		images := doc.pageImages(pageNr)
		if len(images) == 0 {
			continue
		}

		text, err := a.recognizeImages(ctx, images)
		if err != nil {
			warnings = append(warnings, model.Warning{
				Kind:       model.WarnPageSkipped,
				Message:    fmt.Sprintf("OCR failed on page %d: %v", pageNr, err),
				Provenance: base,
			})
			continue
		}

		tables := grid.Detect(text, a.syn)
		if len(tables) == 0 {
			continue
		}
		loc := numeric.DetectLocale(grid.NumericSamples(tables))
		for _, t := range tables {
			for _, row := range t.RawRows(a.syn, base, loc, idx) {
				row.Confidence = model.ConfidenceLow
				rows = append(rows, row)
				idx++
			}
		}
	}

	return rows, warnings
}

// recognizeImages OCRs all images of one page under the page timeout and
// joins the recognized text.
func (a *Adapter) recognizeImages(ctx context.Context, images [][]byte) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, a.opts.PageTimeout)
	defer cancel()

	var sb strings.Builder
	for _, img := range images {
		text, err := a.recognizeOne(pageCtx, img)
		if err != nil {
			return "", err
		}
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// recognizeOne runs a single OCR call in its own goroutine so a hung engine
// converts into a timeout rather than a stalled pipeline. The abandoned
// goroutine owns its client and exits on its own.
func (a *Adapter) recognizeOne(ctx context.Context, image []byte) (string, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := a.recognize(a.opts.OCRLanguage, image)
		ch <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.text, r.err
	}
}
