package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call. Zero or one disables retries.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// InitialBackoff is the delay before the second attempt (default: 100ms).
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`

	// MaxBackoff caps any single delay (default: 2s).
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`

	// Jitter spreads each delay by up to this fraction, 0 to 1.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`

	// RetryIf reports whether err is worth another attempt. Defaults to
	// Transient.
	RetryIf func(error) bool `yaml:"-" mapstructure:"-"`

	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration) `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills zero backoff fields.
func (c *RetryConfig) ApplyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 2 * time.Second
	}
	if c.RetryIf == nil {
		c.RetryIf = Transient
	}
}

// Validate rejects configurations that cannot make progress.
func (c *RetryConfig) Validate() error {
	if c.Jitter < 0 || c.Jitter > 1 {
		return errors.New("retry: jitter must be between 0 and 1")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return errors.New("retry: max_backoff must not be below initial_backoff")
	}
	return nil
}

// Permanent marks err as not worth retrying under Transient.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Transient retries everything except context errors and errors wrapped
// with Permanent.
func Transient(err error) bool {
	var p *permanentError
	if errors.As(err, &p) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry calls fn until it succeeds, cfg.RetryIf rejects the error, the
// attempts run out or ctx ends. It returns fn's last error unwrapped from
// Permanent.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg.ApplyDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= cfg.MaxAttempts || !cfg.RetryIf(err) {
			return unwrapPermanent(err)
		}

		wait := backoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return unwrapPermanent(err)
		case <-timer.C:
		}
	}
}

func unwrapPermanent(err error) error {
	var p *permanentError
	if errors.As(err, &p) {
		return p.err
	}
	return err
}

// backoff is InitialBackoff doubled per failed attempt, jittered, capped.
func backoff(attempt int, cfg RetryConfig) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt-1))
	if cfg.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * cfg.Jitter
	}
	d = min(d, float64(cfg.MaxBackoff))
	if d <= 0 {
		d = float64(cfg.InitialBackoff)
	}
	return time.Duration(d)
}
