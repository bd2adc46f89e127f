package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-heat/internal/domain"
)

// ErrInvalidFixture is returned for fixtures that decode but reference
// heats inconsistently.
var ErrInvalidFixture = errors.New("invalid fixture")

// Fixture is the on-disk form of a Memory store. Both YAML and JSON are
// accepted, since JSON documents are valid YAML.
type Fixture struct {
	Heats   []domain.Heat     `yaml:"heats" validate:"required,min=1"`
	Judges  []JudgeAssignment `yaml:"judges" validate:"dive"`
	Scores  []domain.Score    `yaml:"scores"`
	Results []domain.Result   `yaml:"results"`
}

// JudgeAssignment lists the judges assigned to one heat.
type JudgeAssignment struct {
	HeatID   int   `yaml:"heat_id" validate:"required"`
	JudgeIDs []int `yaml:"judge_ids" validate:"required,min=1,unique"`
}

var validate = validator.New()

// LoadFixture reads a fixture file into a new Memory store.
func LoadFixture(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	m, err := ReadFixture(f)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return m, nil
}

// ReadFixture decodes a fixture strictly, rejecting unknown fields, and
// builds a Memory store from it.
func ReadFixture(r io.Reader) (*Memory, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidFixture)
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validate.Struct(&fx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	return fx.Memory()
}

// Memory builds a store from the fixture. Every judge assignment, score and
// result must belong to a declared heat, and heat IDs must be unique. All
// violations are reported together.
func (fx *Fixture) Memory() (*Memory, error) {
	verr := domain.NewValidationError("fixture")
	known := make(map[int]struct{}, len(fx.Heats))
	for _, h := range fx.Heats {
		if _, dup := known[h.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate heat %d", h.ID))
		}
		known[h.ID] = struct{}{}
	}

	check := func(kind string, heatID int) {
		if _, ok := known[heatID]; !ok {
			verr.AddError(fmt.Sprintf("%s for undeclared heat %d", kind, heatID))
		}
	}
	for _, ja := range fx.Judges {
		check("judges", ja.HeatID)
	}
	for _, s := range fx.Scores {
		check("score", s.HeatID)
	}
	for _, r := range fx.Results {
		check("result", r.HeatID)
	}
	if verr.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, verr)
	}

	m := NewMemory()
	for _, h := range fx.Heats {
		m.PutHeat(h)
	}
	for _, ja := range fx.Judges {
		m.SetJudges(ja.HeatID, ja.JudgeIDs...)
	}
	m.AddScores(fx.Scores...)

	byHeat := make(map[int][]domain.Result)
	for _, r := range fx.Results {
		byHeat[r.HeatID] = append(byHeat[r.HeatID], r)
	}
	for id, results := range byHeat {
		m.SetResults(id, results)
	}
	return m, nil
}
