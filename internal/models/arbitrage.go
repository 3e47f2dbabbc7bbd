package models

// ArbitrageRequest describes a 2-way or 3-way market: one decimal odd per outcome.
type ArbitrageRequest struct {
	Investment float64   `json:"investment"`
	Odds       []float64 `json:"odds"`
}

type ArbitrageResult struct {
	Margin      float64   `json:"margin"` // sum of implied probabilities, in percent
	IsArbitrage bool      `json:"is_arbitrage"`
	ROI         float64   `json:"roi"` // percent
	TotalReturn float64   `json:"total_return"`
	Profit      float64   `json:"profit"`
	Stakes      []float64 `json:"stakes"`
}
