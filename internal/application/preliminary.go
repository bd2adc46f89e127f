package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/logging"
	"github.com/ahrav/go-heat/internal/ports"
)

// DefaultMaxConcurrentHeats bounds ByHeatIDs when no limit is configured.
const DefaultMaxConcurrentHeats = 8

// PreliminaryService loads a heat's inputs from a store and computes its
// preliminary results.
//
// Concurrent requests for the same heat share one store round trip and
// one computation; every caller receives its own copy of the results.
type PreliminaryService struct {
	store         ports.HeatStore
	engine        *Engine
	maxConcurrent int
	logger        *slog.Logger
	sf            singleflight.Group
}

// NewPreliminaryService creates a service over store. A maxConcurrent of
// zero or less selects DefaultMaxConcurrentHeats.
func NewPreliminaryService(store ports.HeatStore, engine *Engine, maxConcurrent int) (*PreliminaryService, error) {
	if store == nil {
		return nil, fmt.Errorf("heat store cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentHeats
	}

	return &PreliminaryService{
		store:         store,
		engine:        engine,
		maxConcurrent: maxConcurrent,
		logger:        logging.New("preliminary"),
	}, nil
}

// ByHeatID computes the preliminary results of one heat. A heat unknown
// to the store yields an empty result and no error. Store failures are
// returned as *ports.StoreError.
//
// Coalesced callers share the context of the first caller for the store
// round trip.
func (s *PreliminaryService) ByHeatID(ctx context.Context, heatID int) ([]domain.Result, error) {
	v, err, shared := s.sf.Do(strconv.Itoa(heatID), func() (any, error) {
		return s.compute(ctx, heatID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "coalesced heat request", slog.Int("heat_id", heatID))
	}
	return domain.CloneResults(v.([]domain.Result)), nil
}

func (s *PreliminaryService) compute(ctx context.Context, heatID int) ([]domain.Result, error) {
	in, found, err := s.load(ctx, heatID)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.DebugContext(ctx, "heat not found", slog.Int("heat_id", heatID))
		return []domain.Result{}, nil
	}

	results, _, err := s.engine.Compute(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("heat %d: %w", heatID, err)
	}
	return results, nil
}

// load fetches the heat, its roster, its scores and its persisted results
// concurrently. A heat stored without a format is treated as standard.
func (s *PreliminaryService) load(ctx context.Context, heatID int) (HeatInput, bool, error) {
	var (
		heat      domain.Heat
		found     bool
		judgeIDs  []int
		scores    []domain.Score
		persisted []domain.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		heat, found, err = s.store.Heat(gctx, heatID)
		return wrapStoreError(heatID, "heat", err)
	})
	g.Go(func() error {
		var err error
		judgeIDs, err = s.store.JudgeIDs(gctx, heatID)
		return wrapStoreError(heatID, "judge_ids", err)
	})
	g.Go(func() error {
		var err error
		scores, err = s.store.Scores(gctx, heatID)
		return wrapStoreError(heatID, "scores", err)
	})
	g.Go(func() error {
		var err error
		persisted, err = s.store.Results(gctx, heatID)
		return wrapStoreError(heatID, "results", err)
	})
	if err := g.Wait(); err != nil {
		return HeatInput{}, false, err
	}

	heatType := heat.Type
	if heatType == "" {
		heatType = domain.HeatTypeStandard
	}

	return HeatInput{
		HeatID:    heatID,
		HeatType:  heatType,
		JudgeIDs:  judgeIDs,
		Scores:    scores,
		Persisted: persisted,
	}, found, nil
}

// wrapStoreError returns err as a *ports.StoreError unless it already is
// one.
func wrapStoreError(heatID int, op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *ports.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return ports.NewStoreError(heatID, op, err)
}

// ByHeatIDs computes several heats concurrently, at most maxConcurrent at
// a time. The first failure cancels the remaining work.
func (s *PreliminaryService) ByHeatIDs(ctx context.Context, heatIDs []int) (map[int][]domain.Result, error) {
	out := make(map[int][]domain.Result, len(heatIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, heatID := range heatIDs {
		g.Go(func() error {
			results, err := s.ByHeatID(gctx, heatID)
			if err != nil {
				return err
			}
			mu.Lock()
			out[heatID] = results
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
