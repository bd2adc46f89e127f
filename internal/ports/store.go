package ports

import (
	"context"

	"github.com/ahrav/go-heat/internal/domain"
)

// HeatStore is the read side of the persistence layer that feeds the
// scoring engine. The engine never writes; implementations only need to
// return a consistent snapshot per call.
//
// Implementations must be safe for concurrent use.
type HeatStore interface {
	// Heat returns the heat with the given ID. The boolean is false when
	// no such heat exists; that is not an error.
	Heat(ctx context.Context, heatID int) (domain.Heat, bool, error)

	// JudgeIDs returns the IDs of the judges currently assigned to the heat.
	JudgeIDs(ctx context.Context, heatID int) ([]int, error)

	// Scores returns every raw score recorded for the heat, including
	// scores from judges that are no longer assigned.
	Scores(ctx context.Context, heatID int) ([]domain.Score, error)

	// Results returns the officially published results of the heat.
	Results(ctx context.Context, heatID int) ([]domain.Result, error)
}
