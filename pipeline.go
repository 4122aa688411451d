package quotepipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quotepipe/quotepipe/config"
	"github.com/quotepipe/quotepipe/format"
	"github.com/quotepipe/quotepipe/inline"
	"github.com/quotepipe/quotepipe/internal/logging"
	"github.com/quotepipe/quotepipe/model"
	"github.com/quotepipe/quotepipe/pdfdoc"
	"github.com/quotepipe/quotepipe/pricing"
	"github.com/quotepipe/quotepipe/quote"
	"github.com/quotepipe/quotepipe/unify"
	"github.com/quotepipe/quotepipe/xlsx"
)

// defaultMaxParallel bounds concurrent attachment extraction.
const defaultMaxParallel = 4

// Pipeline processes vendor emails into quotes. It is safe for concurrent
// use: all per-email state lives on the stack of Process.
type Pipeline struct {
	log         *zap.Logger
	rules       *pricing.RuleSet
	maxParallel int
	now         func() time.Time

	xlsx   *xlsx.Adapter
	pdf    *pdfdoc.Adapter
	inline *inline.Adapter
	agg    *quote.Aggregator
}

// New builds a pipeline from validated configuration. A nil config uses the
// defaults. Invalid pricing rules are fatal here, before any email is
// touched.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	rules, err := cfg.RuleSet()
	if err != nil {
		return nil, err
	}

	syn := cfg.Synonyms()
	p := &Pipeline{
		log: logging.New(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		}),
		rules:       rules,
		maxParallel: defaultMaxParallel,
		now:         time.Now,
		xlsx:        xlsx.NewAdapter(syn),
		inline:      inline.NewAdapter(syn),
		pdf: pdfdoc.NewAdapter(syn, pdfdoc.Options{
			MinTextRows: cfg.Extraction.MinTextRows,
			OCRLanguage: cfg.Extraction.OCRLanguage,
			PageTimeout: cfg.Extraction.OCRPageTimeout.Std(),
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.agg = quote.New(decimal.NewFromFloat(cfg.Pricing.TaxPercent), p.now)
	return p, nil
}

// extraction is one source's contribution, collected into a fixed slot so
// the merged row order is independent of goroutine completion order.
type extraction struct {
	rows     []model.RawRow
	warnings []model.Warning
}

// Process handles one email end to end and returns the quote plus the
// unified product records behind it. Unreadable or unsupported attachments
// degrade to warnings on the quote; an error is returned only when the
// context is done.
func (p *Pipeline) Process(ctx context.Context, email Email) (*model.Quote, []model.ProductRecord, error) {
	// One slot per attachment, plus one for the inline body.
	slots := make([]extraction, len(email.Attachments)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)

	for i, att := range email.Attachments {
		i, att := i, att
		g.Go(func() error {
			ext, err := p.extractAttachment(gctx, att)
			if err != nil {
				return err
			}
			slots[i] = ext
			return nil
		})
	}
	g.Go(func() error {
		rows, warnings, err := p.inline.Extract(email.BodyText, email.BodyHTML)
		if err != nil {
			return err
		}
		slots[len(slots)-1] = extraction{rows: rows, warnings: warnings}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var rows []model.RawRow
	var warnings []model.Warning
	for _, ext := range slots {
		rows = append(rows, ext.rows...)
		warnings = append(warnings, ext.warnings...)
	}

	records := unify.Unify(rows)
	lines := p.rules.PriceAll(records)
	q := p.agg.Assemble(lines, warnings)

	p.log.Info("email processed",
		zap.Int("attachments", len(email.Attachments)),
		zap.Int("raw_rows", len(rows)),
		zap.Int("products", len(records)),
		zap.Int("warnings", len(q.Warnings)),
		zap.String("quote", q.Number),
	)
	return &q, records, nil
}

// extractAttachment dispatches one attachment to its format adapter. Every
// failure short of context cancellation degrades to an attachment-skipped
// warning: one corrupt file must not sink the rest of the email.
func (p *Pipeline) extractAttachment(ctx context.Context, att Attachment) (extraction, error) {
	var (
		rows     []model.RawRow
		warnings []model.Warning
		err      error
	)

	f := format.Detect(att.Filename, att.MimeType, att.Content)
	switch f {
	case format.XLSX:
		rows, warnings, err = p.xlsx.Extract(att.Content, att.Filename)
	case format.PDF:
		rows, warnings, err = p.pdf.Extract(ctx, att.Content, att.Filename)
	case format.HTML:
		rows, warnings, err = p.inline.Extract("", string(att.Content))
	default:
		err = fmt.Errorf("unsupported attachment format")
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return extraction{}, err
		}
		p.log.Warn("attachment skipped",
			zap.String("file", att.Filename),
			zap.Stringer("format", f),
			zap.Error(err),
		)
		return extraction{warnings: []model.Warning{{
			Kind:       model.WarnAttachmentSkipped,
			Message:    fmt.Sprintf("%s: %v", att.Filename, err),
			Provenance: model.Provenance{File: att.Filename},
		}}}, nil
	}
	return extraction{rows: rows, warnings: warnings}, nil
}
