package domain

// SharedHolding is one symbol held by both funds of a pair. Weight1 and
// Weight2 follow the argument order of the pairwise computation; the
// contribution is the minimum of the two.
type SharedHolding struct {
	Symbol              string  `json:"symbol"`
	Name                string  `json:"name"`
	Weight1             float64 `json:"weight1"`
	Weight2             float64 `json:"weight2"`
	OverlapContribution float64 `json:"overlapContribution"`
}

// PairwiseOverlap is the weighted overlap between two funds. The
// percentage is an overlap coefficient (sum of per-symbol minimum weights),
// bounded by 100 for sane inputs, not a Jaccard index. Unique counts are
// count-based: holdings of one fund absent from the other.
type PairwiseOverlap struct {
	OverlapPercentage    float64         `json:"overlapPercentage"`
	SharedHoldings       []SharedHolding `json:"sharedHoldings"`
	UniqueHoldingsCount1 int             `json:"uniqueHoldingsCount1"`
	UniqueHoldingsCount2 int             `json:"uniqueHoldingsCount2"`
}

// CoreHolding is a symbol present in every fund of a selection, with its
// weight in each fund keyed by fund identifier.
type CoreHolding struct {
	Symbol    string             `json:"symbol"`
	Name      string             `json:"name"`
	Weights   map[string]float64 `json:"weights"`
	MinWeight float64            `json:"minWeight"`
}

// CoreOverlap is the N-way intersection across a fund selection, valued at
// the minimum weight each shared symbol carries across all funds.
type CoreOverlap struct {
	SharedHoldings      []CoreHolding `json:"sharedHoldings"`
	TotalOverlap        float64       `json:"totalOverlap"`
	TotalSharedHoldings int           `json:"totalSharedHoldings"`
}

// MatrixResult is the full overlap computation for an ordered fund list:
// an N x N percentage grid (diagonal 100, off-diagonal rounded to two
// decimals), per-ordered-pair detail keyed "{A}-{B}" with unrounded values,
// and the N-way core overlap.
type MatrixResult struct {
	ETFs        []string                   `json:"etfs"`
	Matrix      [][]float64                `json:"matrix"`
	Details     map[string]PairwiseOverlap `json:"details"`
	CoreOverlap CoreOverlap                `json:"coreOverlap"`
}
