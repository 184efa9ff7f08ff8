package overlap

import (
	"testing"

	"github.com/fundlab/overlap/internal/domain"
)

func fundAAA() domain.HoldingsSet {
	return domain.HoldingsSet{
		{Symbol: "AAPL", Name: "Apple Inc", Weight: 10.0},
		{Symbol: "MSFT", Name: "Microsoft", Weight: 8.0},
		{Symbol: "GOOG", Name: "Alphabet", Weight: 5.0},
	}
}

func fundBBB() domain.HoldingsSet {
	return domain.HoldingsSet{
		{Symbol: "AAPL", Name: "Apple Inc", Weight: 6.0},
		{Symbol: "MSFT", Name: "Microsoft", Weight: 9.0},
		{Symbol: "AMZN", Name: "Amazon", Weight: 4.0},
	}
}

func TestComputePairwise(t *testing.T) {
	result := ComputePairwise(fundAAA(), fundBBB())

	if result.OverlapPercentage != 14.0 {
		t.Errorf("overlapPercentage = %v, want 14", result.OverlapPercentage)
	}
	if len(result.SharedHoldings) != 2 {
		t.Fatalf("shared count = %d, want 2", len(result.SharedHoldings))
	}

	// Sorted descending by contribution: MSFT min(8,9)=8 before AAPL min(10,6)=6
	first := result.SharedHoldings[0]
	if first.Symbol != "MSFT" || first.OverlapContribution != 8.0 {
		t.Errorf("first shared = %+v, want MSFT with contribution 8", first)
	}
	if first.Weight1 != 8.0 || first.Weight2 != 9.0 {
		t.Errorf("MSFT weights = (%v, %v), want (8, 9)", first.Weight1, first.Weight2)
	}

	second := result.SharedHoldings[1]
	if second.Symbol != "AAPL" || second.OverlapContribution != 6.0 {
		t.Errorf("second shared = %+v, want AAPL with contribution 6", second)
	}

	if result.UniqueHoldingsCount1 != 1 {
		t.Errorf("uniqueHoldingsCount1 = %d, want 1 (GOOG)", result.UniqueHoldingsCount1)
	}
	if result.UniqueHoldingsCount2 != 1 {
		t.Errorf("uniqueHoldingsCount2 = %d, want 1 (AMZN)", result.UniqueHoldingsCount2)
	}
}

func TestComputePairwiseSymmetry(t *testing.T) {
	ab := ComputePairwise(fundAAA(), fundBBB())
	ba := ComputePairwise(fundBBB(), fundAAA())

	if ab.OverlapPercentage != ba.OverlapPercentage {
		t.Errorf("overlap not symmetric: %v vs %v", ab.OverlapPercentage, ba.OverlapPercentage)
	}

	// Weight labels swap with the argument order
	for i := range ab.SharedHoldings {
		f, r := ab.SharedHoldings[i], ba.SharedHoldings[i]
		if f.Symbol != r.Symbol {
			t.Fatalf("shared order differs at %d: %s vs %s", i, f.Symbol, r.Symbol)
		}
		if f.Weight1 != r.Weight2 || f.Weight2 != r.Weight1 {
			t.Errorf("%s weights not mirrored: (%v,%v) vs (%v,%v)",
				f.Symbol, f.Weight1, f.Weight2, r.Weight1, r.Weight2)
		}
		if f.OverlapContribution != r.OverlapContribution {
			t.Errorf("%s contribution differs: %v vs %v",
				f.Symbol, f.OverlapContribution, r.OverlapContribution)
		}
	}
}

func TestComputePairwiseDisjoint(t *testing.T) {
	a := domain.HoldingsSet{{Symbol: "AAPL", Weight: 10}, {Symbol: "MSFT", Weight: 8}}
	b := domain.HoldingsSet{{Symbol: "TSLA", Weight: 12}, {Symbol: "NVDA", Weight: 7}, {Symbol: "META", Weight: 3}}

	result := ComputePairwise(a, b)

	if result.OverlapPercentage != 0 {
		t.Errorf("overlapPercentage = %v, want 0", result.OverlapPercentage)
	}
	if len(result.SharedHoldings) != 0 {
		t.Errorf("shared count = %d, want 0", len(result.SharedHoldings))
	}
	if result.UniqueHoldingsCount1 != 2 || result.UniqueHoldingsCount2 != 3 {
		t.Errorf("unique counts = (%d, %d), want (2, 3)",
			result.UniqueHoldingsCount1, result.UniqueHoldingsCount2)
	}
}

func TestComputePairwiseEmptySet(t *testing.T) {
	result := ComputePairwise(domain.HoldingsSet{}, fundBBB())

	if result.OverlapPercentage != 0 {
		t.Errorf("overlapPercentage = %v, want 0", result.OverlapPercentage)
	}
	if len(result.SharedHoldings) != 0 {
		t.Errorf("shared count = %d, want 0", len(result.SharedHoldings))
	}
	if result.UniqueHoldingsCount2 != 3 {
		t.Errorf("uniqueHoldingsCount2 = %d, want 3", result.UniqueHoldingsCount2)
	}
}

func TestComputePairwiseTiesKeepEncounterOrder(t *testing.T) {
	a := domain.HoldingsSet{
		{Symbol: "AAA", Weight: 5},
		{Symbol: "BBB", Weight: 5},
		{Symbol: "CCC", Weight: 5},
	}
	b := domain.HoldingsSet{
		{Symbol: "CCC", Weight: 9},
		{Symbol: "BBB", Weight: 9},
		{Symbol: "AAA", Weight: 9},
	}

	result := ComputePairwise(a, b)

	// All contributions tie at 5; order must follow a's holdings order.
	want := []string{"AAA", "BBB", "CCC"}
	for i, s := range want {
		if result.SharedHoldings[i].Symbol != s {
			t.Errorf("position %d = %s, want %s", i, result.SharedHoldings[i].Symbol, s)
		}
	}
}

func TestComputePairwiseIdenticalFundsBounded(t *testing.T) {
	result := ComputePairwise(fundAAA(), fundAAA())

	// Overlap of a fund with itself is the sum of its own weights.
	if result.OverlapPercentage != 23.0 {
		t.Errorf("overlapPercentage = %v, want 23", result.OverlapPercentage)
	}
	if result.OverlapPercentage < 0 || result.OverlapPercentage > 100 {
		t.Errorf("overlapPercentage %v out of [0,100]", result.OverlapPercentage)
	}
	if result.UniqueHoldingsCount1 != 0 || result.UniqueHoldingsCount2 != 0 {
		t.Errorf("unique counts = (%d, %d), want (0, 0)",
			result.UniqueHoldingsCount1, result.UniqueHoldingsCount2)
	}
}
