package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"InvestmentDashboard/internal/model"
)

// LinearTrend fits close = slope*day + intercept by ordinary least squares,
// where day is the 0-based position in the series (trading days, not calendar
// days). Missing closes are counted as 0, which pulls the fit down wherever
// the provider has gaps.
func LinearTrend(closes []float64) (model.Trend, error) {
	n := len(closes)
	if n == 0 {
		return model.Trend{}, ErrEmptySeries
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i, c := range closes {
		x[i] = float64(i)
		if math.IsNaN(c) {
			c = 0
		}
		y[i] = c
	}

	var intercept, slope float64
	if n == 1 {
		intercept = y[0]
	} else {
		intercept, slope = stat.LinearRegression(x, y, nil, false)
	}

	fitted := make([]float64, n)
	for i := range fitted {
		fitted[i] = slope*x[i] + intercept
	}
	return model.Trend{Slope: slope, Intercept: intercept, Fitted: fitted}, nil
}
