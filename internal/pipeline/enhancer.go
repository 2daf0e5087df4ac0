package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Enhancer is an optional external text-processing collaborator (e.g. a hosted
// language model). It may produce a better clean text and category than the
// rule engine; it is never required for correctness.
type Enhancer interface {
	Enhance(ctx context.Context, raw string) (Result, error)
}

const (
	defaultAttemptTimeout = 2 * time.Second
	defaultMaxRetries     = 2
)

// Processor runs the two-tier pipeline: try the enhancer within a bounded
// time/retry budget, fall back to the deterministic rule engine on absence,
// error, or timeout. The fallback is the reference behavior; the enhancer only
// ever substitutes its output on success.
type Processor struct {
	enhancer       Enhancer
	logger         *slog.Logger
	attemptTimeout time.Duration
	maxRetries     uint64
}

type ProcessorOption func(*Processor)

func WithEnhancer(e Enhancer) ProcessorOption {
	return func(p *Processor) {
		p.enhancer = e
	}
}

func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

func WithAttemptTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		if d > 0 {
			p.attemptTimeout = d
		}
	}
}

// NewProcessor constructs a Processor. With no options it is the plain rule
// engine.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		attemptTimeout: defaultAttemptTimeout,
		maxRetries:     defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process derives (clean_text, category) for a raw description.
func (p *Processor) Process(ctx context.Context, raw string) Result {
	fallback := Run(raw)
	if p.enhancer == nil {
		return fallback
	}

	var enhanced Result
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
		defer cancel()
		res, err := p.enhancer.Enhance(attemptCtx, raw)
		if err != nil {
			return err
		}
		enhanced = res
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if p.logger != nil {
			p.logger.WarnContext(ctx, "enhancer unavailable, using rule engine",
				"error", err,
			)
		}
		return fallback
	}

	// An enhancer that returns an unusable result still falls back.
	if enhanced.CleanText == "" {
		enhanced.CleanText = fallback.CleanText
	}
	if !enhanced.Category.IsZero() && !enhanced.Category.IsValid() {
		enhanced.Category = fallback.Category
	}
	return enhanced
}
