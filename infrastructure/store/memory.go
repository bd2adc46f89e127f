// Package store provides an in-memory ports.HeatStore and a fixture file
// format for populating it.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

var _ ports.HeatStore = (*Memory)(nil)

// Memory is a thread-safe HeatStore held entirely in memory. Reads return
// copies, so callers may modify what they get back.
type Memory struct {
	mu      sync.RWMutex
	heats   map[int]domain.Heat
	judges  map[int][]int
	scores  map[int][]domain.Score
	results map[int][]domain.Result
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		heats:   make(map[int]domain.Heat),
		judges:  make(map[int][]int),
		scores:  make(map[int][]domain.Score),
		results: make(map[int][]domain.Result),
	}
}

// PutHeat adds or replaces a heat.
func (m *Memory) PutHeat(h domain.Heat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heats[h.ID] = h
}

// SetJudges replaces the judge roster of a heat.
func (m *Memory) SetJudges(heatID int, judgeIDs ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.judges[heatID] = slices.Clone(judgeIDs)
}

// AddScores appends raw scores, filed under each score's HeatID.
func (m *Memory) AddScores(scores ...domain.Score) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range scores {
		m.scores[s.HeatID] = append(m.scores[s.HeatID], s)
	}
}

// SetResults replaces the published results of a heat.
func (m *Memory) SetResults(heatID int, results []domain.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[heatID] = domain.CloneResults(results)
}

// HeatIDs returns the IDs of all stored heats in ascending order.
func (m *Memory) HeatIDs() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.heats))
	for id := range m.heats {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Heat implements ports.HeatStore.
func (m *Memory) Heat(ctx context.Context, heatID int) (domain.Heat, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Heat{}, false, ports.NewStoreError(heatID, "heat", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.heats[heatID]
	return h, ok, nil
}

// JudgeIDs implements ports.HeatStore.
func (m *Memory) JudgeIDs(ctx context.Context, heatID int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.NewStoreError(heatID, "judge_ids", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.judges[heatID]), nil
}

// Scores implements ports.HeatStore.
func (m *Memory) Scores(ctx context.Context, heatID int) ([]domain.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.NewStoreError(heatID, "scores", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.scores[heatID]), nil
}

// Results implements ports.HeatStore.
func (m *Memory) Results(ctx context.Context, heatID int) ([]domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.NewStoreError(heatID, "results", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.CloneResults(m.results[heatID]), nil
}
