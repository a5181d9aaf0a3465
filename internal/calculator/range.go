package calculator

import (
	"math"

	"InvestmentDashboard/internal/model"
)

// tradingDaysPerYear is the lookback used for the 52-week range.
const tradingDaysPerYear = 252

// Calculate52WeekRange scans the most recent 252 trading days and returns the
// highest high and lowest low. Bars without a value are skipped.
func Calculate52WeekRange(dailyBars []model.OHLCV) (high, low float64, err error) {
	if len(dailyBars) == 0 {
		return 0, 0, ErrEmptySeries
	}
	n := len(dailyBars)
	start := n - tradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if h := dailyBars[i].High; !math.IsNaN(h) && h > high {
			high = h
		}
		if l := dailyBars[i].Low; !math.IsNaN(l) && l < low {
			low = l
		}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, ErrEmptySeries
	}
	return high, low, nil
}
