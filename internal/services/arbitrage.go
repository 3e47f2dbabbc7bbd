package services

import (
	"fmt"

	"betsafe-ai/internal/models"
)

// CalculateArbitrage splits investment across the outcomes in proportion to
// their implied probabilities, so every outcome pays the same amount. The
// market is an arbitrage when the implied probabilities sum below 100%.
func CalculateArbitrage(investment float64, odds []float64) (*models.ArbitrageResult, error) {
	fields := map[string]string{}
	if investment <= 0 {
		fields["investment"] = "must be positive"
	}
	if len(odds) != 2 && len(odds) != 3 {
		fields["odds"] = "must list 2 or 3 outcomes"
	} else {
		for i, o := range odds {
			if o <= 1 {
				fields[fmt.Sprintf("odds[%d]", i)] = "must be greater than 1"
			}
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var implied float64
	for _, o := range odds {
		implied += 1 / o
	}

	stakes := make([]float64, len(odds))
	for i, o := range odds {
		stakes[i] = investment * (1 / o) / implied
	}

	result := &models.ArbitrageResult{
		Margin:      implied * 100,
		IsArbitrage: implied < 1,
		TotalReturn: investment,
		Stakes:      stakes,
	}

	if result.IsArbitrage {
		result.TotalReturn = investment / implied
		result.ROI = (1/implied - 1) * 100
		result.Profit = result.TotalReturn - investment
	}

	return result, nil
}
