// Package overlap implements the fund overlap engine: weighted pairwise
// overlap between two funds, the N-way core overlap across a selection,
// and the full matrix combining both. All computations are pure functions
// of their inputs; holdings sets are expected to be symbol-deduplicated
// before they reach this package.
package overlap

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/fundlab/overlap/internal/domain"
)

// ComputePairwise computes the weighted overlap between two funds.
// The result's weight1/weight2 labeling follows the argument order; the
// overlap percentage itself is symmetric. Shared holdings are sorted
// descending by contribution, ties keeping the encounter order of a.
func ComputePairwise(a, b domain.HoldingsSet) domain.PairwiseOverlap {
	idxB := b.Index()

	shared := make([]domain.SharedHolding, 0)
	for _, h := range a {
		other, ok := idxB[h.Symbol]
		if !ok {
			continue
		}
		shared = append(shared, domain.SharedHolding{
			Symbol:              h.Symbol,
			Name:                h.Name,
			Weight1:             h.Weight,
			Weight2:             other.Weight,
			OverlapContribution: math.Min(h.Weight, other.Weight),
		})
	}

	sort.SliceStable(shared, func(i, j int) bool {
		return shared[i].OverlapContribution > shared[j].OverlapContribution
	})

	total := lo.SumBy(shared, func(s domain.SharedHolding) float64 {
		return s.OverlapContribution
	})

	return domain.PairwiseOverlap{
		OverlapPercentage:    total,
		SharedHoldings:       shared,
		UniqueHoldingsCount1: len(a) - len(shared),
		UniqueHoldingsCount2: len(b) - len(shared),
	}
}
