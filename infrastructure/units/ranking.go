package units

import (
	"cmp"
	"slices"

	"github.com/ahrav/go-heat/internal/domain"
)

// rankEntry is one surfer's standing before places are assigned.
type rankEntry struct {
	surferID int
	total    float64
	// vector is compared lexicographically, highest first.
	vector []float64
	waves  []domain.WaveScore
}

// wavesBySurfer groups wave scores per surfer, each surfer's waves sorted
// by wave index.
func wavesBySurfer(waveScores []domain.WaveScore) map[int][]domain.WaveScore {
	bySurfer := make(map[int][]domain.WaveScore)
	for _, ws := range waveScores {
		bySurfer[ws.SurferID] = append(bySurfer[ws.SurferID], ws)
	}
	for _, waves := range bySurfer {
		slices.SortStableFunc(waves, func(a, b domain.WaveScore) int {
			return cmp.Compare(a.Wave, b.Wave)
		})
	}
	return bySurfer
}

// placeEntries orders entries by descending tie-break vector and assigns
// places. A surfer whose vector equals the previous surfer's shares that
// place; otherwise the place is the surfer's index, so a two-way tie at
// the top yields 0, 0, 2. Equal vectors are ordered by surfer ID.
//
// Tolerance comparison is not transitive, so the outcome depends on the
// input order; entries are put in surfer ID order first to keep it fixed.
func placeEntries(heatID int, entries []rankEntry) []domain.Result {
	slices.SortFunc(entries, func(a, b rankEntry) int { return cmp.Compare(a.surferID, b.surferID) })
	slices.SortStableFunc(entries, func(a, b rankEntry) int {
		if c := domain.CompareVectors(b.vector, a.vector); c != 0 {
			return c
		}
		return cmp.Compare(a.surferID, b.surferID)
	})

	results := make([]domain.Result, 0, len(entries))
	place := 0
	for i, e := range entries {
		if i > 0 && !domain.VectorsEqual(entries[i-1].vector, e.vector) {
			place = i
		}
		results = append(results, domain.Result{
			HeatID:     heatID,
			SurferID:   e.surferID,
			TotalScore: e.total,
			Place:      place,
			WaveScores: e.waves,
		})
	}
	return results
}
