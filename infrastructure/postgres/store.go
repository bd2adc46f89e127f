package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.HeatStore = (*Store)(nil)

const (
	queryHeat = `
        SELECT id, category_id, name, round, number_in_round, number_of_waves, heat_type::text
        FROM heats
        WHERE id = $1`

	queryJudgeIDs = `
        SELECT judge_id
        FROM judge_assignments
        WHERE heat_id = $1
        ORDER BY judge_id`

	queryScores = `
        SELECT surfer_id, judge_id, heat_id, wave, score, interference, missed
        FROM scores
        WHERE heat_id = $1
        ORDER BY surfer_id, wave, judge_id`

	queryResults = `
        SELECT heat_id, surfer_id, total_score, place, COALESCE(wave_scores, '[]'::jsonb)
        FROM results
        WHERE heat_id = $1
        ORDER BY place, surfer_id`
)

// Store is a read-only ports.HeatStore over the competition schema.
type Store struct {
	q Querier
}

// NewStore creates a store that issues queries through q.
func NewStore(q Querier) *Store { return &Store{q: q} }

// Heat implements ports.HeatStore. A missing row is reported through the
// boolean, not as an error.
func (s *Store) Heat(ctx context.Context, heatID int) (domain.Heat, bool, error) {
	var (
		h        domain.Heat
		heatType string
	)
	err := s.q.QueryRow(ctx, queryHeat, heatID).Scan(
		&h.ID, &h.CategoryID, &h.Name, &h.Round, &h.NumberInRound, &h.NumberOfWaves, &heatType,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Heat{}, false, nil
	}
	if err != nil {
		return domain.Heat{}, false, storeError(heatID, "heat", err)
	}
	h.Type = domain.HeatType(heatType)
	return h, true, nil
}

// JudgeIDs implements ports.HeatStore.
func (s *Store) JudgeIDs(ctx context.Context, heatID int) ([]int, error) {
	rows, err := s.q.Query(ctx, queryJudgeIDs, heatID)
	if err != nil {
		return nil, storeError(heatID, "judge_ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, storeError(heatID, "judge_ids", err)
	}
	return ids, nil
}

// Scores implements ports.HeatStore.
func (s *Store) Scores(ctx context.Context, heatID int) ([]domain.Score, error) {
	rows, err := s.q.Query(ctx, queryScores, heatID)
	if err != nil {
		return nil, storeError(heatID, "scores", err)
	}
	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Score, error) {
		var sc domain.Score
		err := row.Scan(&sc.SurferID, &sc.JudgeID, &sc.HeatID, &sc.Wave, &sc.Score, &sc.Interference, &sc.Missed)
		return sc, err
	})
	if err != nil {
		return nil, storeError(heatID, "scores", err)
	}
	return scores, nil
}

// Results implements ports.HeatStore. Wave scores are decoded from the
// JSON column; publish flags are left unset.
func (s *Store) Results(ctx context.Context, heatID int) ([]domain.Result, error) {
	rows, err := s.q.Query(ctx, queryResults, heatID)
	if err != nil {
		return nil, storeError(heatID, "results", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Result, error) {
		var r domain.Result
		err := row.Scan(&r.HeatID, &r.SurferID, &r.TotalScore, &r.Place, &r.WaveScores)
		return r, err
	})
	if err != nil {
		return nil, storeError(heatID, "results", err)
	}
	return results, nil
}

func storeError(heatID int, op string, err error) error {
	if isTimeout(err) {
		err = fmt.Errorf("%w: %w", ports.ErrTimeout, err)
	}
	return ports.NewStoreError(heatID, op, err)
}
