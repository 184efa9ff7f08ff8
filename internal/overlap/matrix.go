package overlap

import (
	"errors"
	"fmt"

	"github.com/fundlab/overlap/internal/domain"
)

// ErrInsufficientFunds indicates fewer than two fund identifiers.
var ErrInsufficientFunds = errors.New("at least two funds are required")

// ErrMissingHoldings indicates a fund identifier with no resolved
// holdings. Resolution is the caller's job; the engine fails fast.
var ErrMissingHoldings = errors.New("missing holdings for fund")

// BuildMatrix computes the full overlap result for an ordered fund list:
// the N x N percentage grid, per-ordered-pair detail, and the core
// overlap. Diagonal cells are exactly 100; off-diagonal cells carry the
// pairwise percentage rounded to two decimals while the detail map keeps
// the unrounded results under both "{i}-{j}" and "{j}-{i}" keys.
func BuildMatrix(fundIDs []string, byFund map[string]domain.HoldingsSet) (domain.MatrixResult, error) {
	if len(fundIDs) < 2 {
		return domain.MatrixResult{}, ErrInsufficientFunds
	}
	for _, id := range fundIDs {
		if len(byFund[id]) == 0 {
			return domain.MatrixResult{}, fmt.Errorf("%w: %s", ErrMissingHoldings, id)
		}
	}

	n := len(fundIDs)
	matrix := make([][]float64, n)
	details := make(map[string]domain.PairwiseOverlap, n*(n-1))

	for i, idI := range fundIDs {
		matrix[i] = make([]float64, n)
		for j, idJ := range fundIDs {
			if i == j {
				matrix[i][j] = 100
				continue
			}
			pair := ComputePairwise(byFund[idI], byFund[idJ])
			matrix[i][j] = domain.RoundPercent(pair.OverlapPercentage)
			details[fmt.Sprintf("%s-%s", idI, idJ)] = pair
		}
	}

	return domain.MatrixResult{
		ETFs:        append([]string(nil), fundIDs...),
		Matrix:      matrix,
		Details:     details,
		CoreOverlap: ComputeCore(fundIDs, byFund),
	}, nil
}
