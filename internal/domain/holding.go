package domain

import "github.com/samber/lo"

// Holding is a single security position inside a fund. Weight is the
// holding's share of the fund's total assets on a 0-100 scale; the weights
// of a fund are not required to sum to exactly 100 (rounding, residual cash).
// Shares is informational only and plays no role in overlap math.
type Holding struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Weight float64  `json:"weight"`
	Shares *float64 `json:"shares,omitempty"`
}

// HoldingsSet is one fund's holdings in their published order.
// Symbols are expected to be unique within a set; Normalize enforces that.
type HoldingsSet []Holding

// Normalize returns the set with duplicate symbols removed, keeping the
// first occurrence of each symbol. Order is otherwise preserved.
// Weights are passed through as-is; no scale conversion or clamping.
func (h HoldingsSet) Normalize() HoldingsSet {
	return HoldingsSet(lo.UniqBy(h, func(x Holding) string {
		return x.Symbol
	}))
}

// Index builds a symbol-keyed lookup over the set. Assumes symbols are
// unique (last wins otherwise, which Normalize rules out upstream).
func (h HoldingsSet) Index() map[string]Holding {
	return lo.SliceToMap(h, func(x Holding) (string, Holding) {
		return x.Symbol, x
	})
}

// FundHoldings pairs a fund identifier with its resolved holdings.
type FundHoldings struct {
	Symbol   string      `json:"symbol"`
	Name     string      `json:"name"`
	Holdings HoldingsSet `json:"holdings"`
}
