// Package retry wraps operations with bounded retries and deterministic
// exponential backoff. Only transport-level failures and rate-limit signals are
// retried; definitive application errors surface immediately.
package retry

import (
	"context"
	"time"

	"github.com/tedbot101/Stalker-Recon/internal/platform/errors"
	"github.com/tedbot101/Stalker-Recon/internal/platform/logx"
)

const (
	// DefaultMaxAttempts matches the documented source retry policy.
	DefaultMaxAttempts = 3

	// DefaultBaseWait is the backoff floor (attempt 1 waits this long).
	DefaultBaseWait = 4 * time.Second

	// DefaultMaxWait caps the exponential backoff.
	DefaultMaxWait = 10 * time.Second
)

// Executor ejecuta operaciones con reintentos acotados. El backoff es
// determinista (sin jitter): el intento n espera min(maxWait, base * 2^(n-1)).
type Executor struct {
	maxAttempts int
	baseWait    time.Duration
	maxWait     time.Duration
	logger      logx.Logger
}

// NewExecutor creates an Executor. Zero values take the documented defaults
// (3 attempts, 4s base, 10s cap).
func NewExecutor(maxAttempts int, baseWait, maxWait time.Duration, logger logx.Logger) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseWait <= 0 {
		baseWait = DefaultBaseWait
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	if logger == nil {
		logger = logx.New()
	}

	return &Executor{
		maxAttempts: maxAttempts,
		baseWait:    baseWait,
		maxWait:     maxWait,
		logger:      logger.With("component", "retry"),
	}
}

// Run invokes op up to maxAttempts times. Every attempt, success or failure, is
// logged with the operation label so the decision can be reconstructed later.
// Returns the last failure when all attempts are exhausted.
func (e *Executor) Run(ctx context.Context, label string, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "%s aborted before attempt %d", label, attempt)
		}

		err := op(ctx)
		if err == nil {
			e.logger.Debug("attempt succeeded", "op", label, "attempt", attempt)
			return nil
		}

		lastErr = err
		e.logger.Warn("attempt failed",
			"op", label,
			"attempt", attempt,
			"max_attempts", e.maxAttempts,
			"error", err.Error(),
		)

		if !errors.IsRetryable(err) {
			e.logger.Debug("error not retryable, giving up", "op", label)
			return err
		}
		if attempt == e.maxAttempts {
			break
		}

		wait := e.backoff(attempt)
		// Un hint del servidor (Retry-After) manda sobre el backoff calculado.
		if hint, ok := errors.RetryAfter(err); ok && hint > wait {
			wait = hint
		}

		e.logger.Debug("backing off before retry",
			"op", label,
			"attempt", attempt,
			"wait_ms", wait.Milliseconds(),
		)

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "%s canceled during backoff", label)
		case <-time.After(wait):
		}
	}

	return errors.Wrapf(lastErr, "%s failed after %d attempts", label, e.maxAttempts)
}

// backoff returns the deterministic wait for a completed attempt number.
func (e *Executor) backoff(attempt int) time.Duration {
	wait := e.baseWait
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= e.maxWait {
			return e.maxWait
		}
	}
	if wait > e.maxWait {
		wait = e.maxWait
	}
	return wait
}
