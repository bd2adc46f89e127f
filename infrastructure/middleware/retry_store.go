package middleware

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

// Default retry configuration constants.
const (
	DefaultMaxAttempts   = 2
	DefaultBaseDelay     = 100 * time.Millisecond
	DefaultMaxDelay      = 2 * time.Second
	DefaultJitterPercent = 0.1
)

// RetryConfig controls exponential backoff between store attempts.
type RetryConfig struct {
	// MaxAttempts is the number of retries after the first call. Zero
	// disables retrying.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Later delays double
	// up to MaxDelay.
	BaseDelay time.Duration

	MaxDelay time.Duration

	// JitterPercent randomizes each delay by up to this fraction.
	JitterPercent float64
}

// DefaultRetryConfig returns the package defaults. The CLI starts from it
// and overrides the attempt and delay settings from configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   DefaultMaxAttempts,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
		JitterPercent: DefaultJitterPercent,
	}
}

var _ ports.HeatStore = (*RetryingStore)(nil)

// RetryingStore retries store reads that fail with a retryable
// *ports.StoreError. Other errors are returned on the first failure.
type RetryingStore struct {
	next   ports.HeatStore
	config RetryConfig
}

// NewRetryingStore wraps next with retry behavior controlled by config.
func NewRetryingStore(next ports.HeatStore, config RetryConfig) *RetryingStore {
	return &RetryingStore{next: next, config: config}
}

// retry calls fn until it succeeds, fails permanently, or the attempts
// are used up.
func retry[T any](ctx context.Context, s *RetryingStore, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt <= s.config.MaxAttempts; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}

		lastErr = err
		if attempt == s.config.MaxAttempts || !isRetryable(err) {
			break
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", errors.Join(ctx.Err(), lastErr))
		case <-time.After(s.delay(attempt)):
		}
	}
	return zero, lastErr
}

// Heat implements ports.HeatStore.
func (s *RetryingStore) Heat(ctx context.Context, heatID int) (domain.Heat, bool, error) {
	type found struct {
		heat domain.Heat
		ok   bool
	}
	f, err := retry(ctx, s, func() (found, error) {
		h, ok, err := s.next.Heat(ctx, heatID)
		return found{h, ok}, err
	})
	return f.heat, f.ok, err
}

// JudgeIDs implements ports.HeatStore.
func (s *RetryingStore) JudgeIDs(ctx context.Context, heatID int) ([]int, error) {
	return retry(ctx, s, func() ([]int, error) { return s.next.JudgeIDs(ctx, heatID) })
}

// Scores implements ports.HeatStore.
func (s *RetryingStore) Scores(ctx context.Context, heatID int) ([]domain.Score, error) {
	return retry(ctx, s, func() ([]domain.Score, error) { return s.next.Scores(ctx, heatID) })
}

// Results implements ports.HeatStore.
func (s *RetryingStore) Results(ctx context.Context, heatID int) ([]domain.Result, error) {
	return retry(ctx, s, func() ([]domain.Result, error) { return s.next.Results(ctx, heatID) })
}

func isRetryable(err error) bool {
	var storeErr *ports.StoreError
	return errors.As(err, &storeErr) && storeErr.IsRetryable()
}

// delay returns the backoff for attempt, capped at MaxDelay and never
// below BaseDelay.
func (s *RetryingStore) delay(attempt int) time.Duration {
	d := s.config.BaseDelay * time.Duration(1<<attempt)
	if s.config.MaxDelay > 0 && d > s.config.MaxDelay {
		d = s.config.MaxDelay
	}

	jitter := int64(float64(d) * s.config.JitterPercent)
	if jitter > 0 {
		//nolint:gosec // G404: math/rand is fine for retry jitter.
		d += time.Duration(rand.Int64N(2*jitter) - jitter)
	}

	if d < s.config.BaseDelay {
		return s.config.BaseDelay
	}
	return d
}
