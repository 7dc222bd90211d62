package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/kelseyhightower/envconfig"
)

// RetryConfig controls the Retry link. Zero values fall back to defaults.
type RetryConfig struct {
	MaxAttempts int           `split_words:"true" default:"3"`
	BaseBackoff time.Duration `split_words:"true" default:"100ms"`
	MaxInterval time.Duration `split_words:"true" default:"5s"`

	// ShouldRetry classifies failures. Nil retries everything except context
	// cancellation and deadline errors.
	ShouldRetry func(error) bool `ignored:"true"`
}

// LoadRetryConfig reads GQLTEST_RETRY_* environment variables.
func LoadRetryConfig() (RetryConfig, error) {
	var cfg RetryConfig
	if err := envconfig.Process("GQLTEST_RETRY", &cfg); err != nil {
		return RetryConfig{}, fmt.Errorf("failed to process retry environment variables: %w", err)
	}
	return cfg, nil
}

// Retry re-forwards failed operations with exponential backoff.
type Retry struct {
	cfg RetryConfig
}

var _ Link = (*Retry)(nil)

// NewRetry applies defaults to cfg and returns the link.
func NewRetry(cfg RetryConfig) *Retry {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = isRetryable
	}
	return &Retry{cfg: cfg}
}

// Request implements Link.
func (r *Retry) Request(ctx context.Context, op *Operation, forward Forward) *Future {
	out := NewFuture()
	go func() {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = r.cfg.BaseBackoff
		exp.Multiplier = 2
		exp.MaxInterval = r.cfg.MaxInterval
		exp.MaxElapsedTime = 0
		exp.Reset()

		policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.cfg.MaxAttempts-1)), ctx)

		var res *Result
		err := backoff.Retry(func() error {
			attempt, err := forward(ctx, op).Wait(ctx)
			if err != nil {
				if !r.cfg.ShouldRetry(err) {
					return backoff.Permanent(err)
				}
				return err
			}
			res = attempt
			return nil
		}, policy)
		out.Complete(res, err)
	}()
	return out
}

func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
