package quotepipe

import (
	"time"

	"go.uber.org/zap"
)

// Option customizes a Pipeline at construction time.
type Option func(*Pipeline)

// WithLogger replaces the logger built from the configuration's logging
// section. Pass zap.NewNop() to silence the pipeline.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMaxParallel bounds how many attachments are extracted concurrently.
func WithMaxParallel(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxParallel = n
		}
	}
}

// WithClock injects the clock used for quote numbers and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}
