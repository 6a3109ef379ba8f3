package funding

import (
	"context"
	"time"

	"github.com/vitwit/gasfund/logger"
	"github.com/vitwit/gasfund/metrics"
	"github.com/vitwit/gasfund/pricing"
)

type Option func(*Engine)

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

func WithPricer(p pricing.Service) Option {
	return func(e *Engine) {
		e.pricer = p
	}
}

// WithGraceDelay sets the operator-interrupt window before submission.
func WithGraceDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.graceDelay = d
	}
}

// WithDryRun suppresses the final transaction submission.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithSleeper replaces the delay implementation, letting tests run the
// grace window at zero duration.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) {
		e.sleep = sleep
	}
}
