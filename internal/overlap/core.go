package overlap

import (
	"sort"

	"github.com/fundlab/overlap/internal/domain"
)

// ComputeCore computes the N-way core overlap: symbols present in every
// fund of the selection, valued at the minimum weight across all funds.
// Fewer than two funds yields the zero result; this is a defined no-op,
// not an error. Candidate order comes from the first fund in fundIDs, and
// a shared symbol's display name is the first non-empty name encountered
// in fundIDs order.
func ComputeCore(fundIDs []string, byFund map[string]domain.HoldingsSet) domain.CoreOverlap {
	if len(fundIDs) < 2 {
		return domain.CoreOverlap{SharedHoldings: []domain.CoreHolding{}}
	}

	indexes := make(map[string]map[string]domain.Holding, len(fundIDs))
	for _, id := range fundIDs {
		indexes[id] = byFund[id].Index()
	}

	pivot := byFund[fundIDs[0]]

	shared := make([]domain.CoreHolding, 0)
	for _, candidate := range pivot {
		weights := make(map[string]float64, len(fundIDs))
		name := ""
		inAll := true
		for _, id := range fundIDs {
			h, ok := indexes[id][candidate.Symbol]
			if !ok {
				inAll = false
				break
			}
			weights[id] = h.Weight
			if name == "" && h.Name != "" {
				name = h.Name
			}
		}
		if !inAll {
			continue
		}

		minWeight := weights[fundIDs[0]]
		for _, w := range weights {
			if w < minWeight {
				minWeight = w
			}
		}
		if name == "" {
			name = candidate.Symbol
		}

		shared = append(shared, domain.CoreHolding{
			Symbol:    candidate.Symbol,
			Name:      name,
			Weights:   weights,
			MinWeight: minWeight,
		})
	}

	sort.SliceStable(shared, func(i, j int) bool {
		return shared[i].MinWeight > shared[j].MinWeight
	})

	total := 0.0
	for _, s := range shared {
		total += s.MinWeight
	}

	return domain.CoreOverlap{
		SharedHoldings:      shared,
		TotalOverlap:        total,
		TotalSharedHoldings: len(shared),
	}
}
