package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-heat/internal/domain"
)

const yamlFixture = `
heats:
  - id: 1
    name: Quarterfinal 1
    heat_type: standard
  - id: 2
    name: RSL 1
    heat_type: call
judges:
  - heat_id: 1
    judge_ids: [1, 2, 3]
  - heat_id: 2
    judge_ids: [4, 5]
scores:
  - {surfer_id: 10, judge_id: 1, heat_id: 1, wave: 0, score: 7.5}
  - {surfer_id: 10, judge_id: 2, heat_id: 1, wave: 0, score: 0, missed: true}
  - {surfer_id: 20, judge_id: 4, heat_id: 2, wave: 1, score: 6}
results:
  - heat_id: 1
    surfer_id: 10
    total_score: 7.5
    place: 0
    wave_scores:
      - {surfer_id: 10, wave: 0, score: 7.5}
`

const jsonFixture = `{
  "heats": [{"id": 3, "name": "Final", "heat_type": "call"}],
  "judges": [{"heat_id": 3, "judge_ids": [1, 2]}],
  "scores": [{"surfer_id": 1, "judge_id": 1, "heat_id": 3, "wave": 0, "score": 8.25}]
}`

func TestReadFixtureYAML(t *testing.T) {
	m, err := ReadFixture(strings.NewReader(yamlFixture))
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, []int{1, 2}, m.HeatIDs())

	h, ok, err := m.Heat(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.HeatTypeCall, h.Type)

	judges, err := m.JudgeIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, judges)

	scores, err := m.Scores(ctx, 1)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.True(t, scores[1].Missed)

	results, err := m.Results(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []domain.WaveScore{{SurferID: 10, Wave: 0, Score: 7.5}}, results[0].WaveScores)
}

func TestReadFixtureJSON(t *testing.T) {
	m, err := ReadFixture(strings.NewReader(jsonFixture))
	require.NoError(t, err)

	scores, err := m.Scores(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 8.25, scores[0].Score)
}

func TestReadFixtureErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		invalid bool
	}{
		{name: "empty", input: "", wantErr: "empty document", invalid: true},
		{name: "unknown field", input: "heats: [{id: 1}]\nsurfers: []\n", wantErr: "field surfers not found"},
		{name: "no heats", input: "heats: []\n", invalid: true},
		{
			name:    "duplicate judges",
			input:   "heats: [{id: 1}]\njudges: [{heat_id: 1, judge_ids: [1, 1]}]\n",
			invalid: true,
		},
		{name: "duplicate heat", input: "heats: [{id: 1}, {id: 1}]\n", wantErr: "duplicate heat 1", invalid: true},
		{
			name:    "undeclared heat score",
			input:   "heats: [{id: 1}]\nscores: [{heat_id: 2, surfer_id: 1, judge_id: 1}]\n",
			wantErr: "score for undeclared heat 2",
			invalid: true,
		},
		{
			name:    "undeclared heat result",
			input:   "heats: [{id: 1}]\nresults: [{heat_id: 9, surfer_id: 1}]\n",
			wantErr: "result for undeclared heat 9",
			invalid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFixture(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidFixture)
			} else {
				assert.NotErrorIs(t, err, ErrInvalidFixture)
			}
		})
	}
}

func TestFixtureReportsAllProblems(t *testing.T) {
	fx := Fixture{
		Heats:   []domain.Heat{{ID: 1}, {ID: 1}},
		Scores:  []domain.Score{{HeatID: 2}},
		Results: []domain.Result{{HeatID: 3}},
	}

	_, err := fx.Memory()
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"duplicate heat 1",
		"score for undeclared heat 2",
		"result for undeclared heat 3",
	}, verr.Errors)
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlFixture), 0o600))

	m, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, m.HeatIDs())

	_, err = LoadFixture(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
