package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"InvestmentDashboard/internal/model"
)

var (
	ErrInvalidPrice  = errors.New("price must be positive")
	ErrInvalidPeriod = errors.New("period must be longer than zero years")
)

const daysPerYear = 365.25

// CAGR returns the compound annual growth rate between two prices.
// Elapsed years are measured in calendar days / 365.25.
func CAGR(startPrice, endPrice float64, start, end time.Time) (float64, error) {
	if math.IsNaN(startPrice) || startPrice <= 0 {
		return 0, fmt.Errorf("start price %v: %w", startPrice, ErrInvalidPrice)
	}
	if math.IsNaN(endPrice) || endPrice <= 0 {
		return 0, fmt.Errorf("end price %v: %w", endPrice, ErrInvalidPrice)
	}
	years := end.Sub(start).Hours() / 24 / daysPerYear
	if years <= 0 {
		return 0, ErrInvalidPeriod
	}
	return math.Pow(endPrice/startPrice, 1/years) - 1, nil
}

// SeriesCAGR computes CAGR between the first and the last bar of a series.
// A missing close at either end is an error rather than being skipped.
func SeriesCAGR(series *model.PriceSeries) (float64, error) {
	if series == nil || len(series.Bars) == 0 {
		return 0, ErrEmptySeries
	}
	first := series.Bars[0]
	last := series.Bars[len(series.Bars)-1]
	if math.IsNaN(first.Close) {
		return 0, fmt.Errorf("no close on %s: %w", first.Time.Format("2006-01-02"), ErrInvalidPrice)
	}
	if math.IsNaN(last.Close) {
		return 0, fmt.Errorf("no close on %s: %w", last.Time.Format("2006-01-02"), ErrInvalidPrice)
	}
	return CAGR(first.Close, last.Close, first.Time, last.Time)
}
