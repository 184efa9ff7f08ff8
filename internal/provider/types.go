package provider

// fundHoldingsResponse is the JSON shape of GET /v1/funds/{symbol}/holdings.
type fundHoldingsResponse struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Holdings []holdingRecord `json:"holdings"`
}

// holdingRecord is a single constituent as published upstream. Weight is a
// string on the 0-100 scale, possibly with a trailing percent sign.
type holdingRecord struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Weight string   `json:"weight"`
	Shares *float64 `json:"shares,omitempty"`
}
