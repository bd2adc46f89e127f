package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.HeatStore = (*RateLimitedStore)(nil)

// RateLimitedStore throttles reads against a HeatStore with a token
// bucket shared by all operations. Callers block until a token is
// available or their context ends.
type RateLimitedStore struct {
	next    ports.HeatStore
	limiter *rate.Limiter
}

// NewRateLimitedStore wraps next with a limiter allowing rps requests per
// second and bursts of up to burst requests. A non-positive rps disables
// throttling; a burst below one is raised to one.
func NewRateLimitedStore(next ports.HeatStore, rps float64, burst int) *RateLimitedStore {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimitedStore{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (s *RateLimitedStore) wait(ctx context.Context, heatID int, op string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return ports.NewStoreError(heatID, op, fmt.Errorf("%w: %w", ports.ErrRateLimited, err))
	}
	return nil
}

// Heat implements ports.HeatStore.
func (s *RateLimitedStore) Heat(ctx context.Context, heatID int) (domain.Heat, bool, error) {
	if err := s.wait(ctx, heatID, "heat"); err != nil {
		return domain.Heat{}, false, err
	}
	return s.next.Heat(ctx, heatID)
}

// JudgeIDs implements ports.HeatStore.
func (s *RateLimitedStore) JudgeIDs(ctx context.Context, heatID int) ([]int, error) {
	if err := s.wait(ctx, heatID, "judge_ids"); err != nil {
		return nil, err
	}
	return s.next.JudgeIDs(ctx, heatID)
}

// Scores implements ports.HeatStore.
func (s *RateLimitedStore) Scores(ctx context.Context, heatID int) ([]domain.Score, error) {
	if err := s.wait(ctx, heatID, "scores"); err != nil {
		return nil, err
	}
	return s.next.Scores(ctx, heatID)
}

// Results implements ports.HeatStore.
func (s *RateLimitedStore) Results(ctx context.Context, heatID int) ([]domain.Result, error) {
	if err := s.wait(ctx, heatID, "results"); err != nil {
		return nil, err
	}
	return s.next.Results(ctx, heatID)
}
