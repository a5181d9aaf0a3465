package calculator

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidWindow = errors.New("window must be positive")
	ErrEmptySeries   = errors.New("series is empty")
)

// Window sizes used by the dashboard.
const (
	ShortWindow = 50
	LongWindow  = 200
	BandWidth   = 2.0
)

// RollingMean computes the trailing simple moving average of values.
// Positions before window-1, and positions whose window contains a NaN,
// have no value (NaN).
func RollingMean(values []float64, window int) ([]float64, error) {
	return rolling(values, window, func(w []float64) float64 {
		return stat.Mean(w, nil)
	})
}

// RollingStdDev computes the trailing sample standard deviation (n-1) of
// values using the same alignment rules as RollingMean. A window of 1 has
// no defined sample deviation and yields NaN everywhere.
func RollingStdDev(values []float64, window int) ([]float64, error) {
	return rolling(values, window, func(w []float64) float64 {
		if len(w) < 2 {
			return math.NaN()
		}
		return stat.StdDev(w, nil)
	})
}

// Bands returns mean ± k·stddev over the trailing window. Both bands are NaN
// wherever the rolling statistics are undefined.
func Bands(values []float64, window int, k float64) (upper, lower []float64, err error) {
	mean, err := RollingMean(values, window)
	if err != nil {
		return nil, nil, err
	}
	sd, err := RollingStdDev(values, window)
	if err != nil {
		return nil, nil, err
	}
	upper = make([]float64, len(values))
	lower = make([]float64, len(values))
	for i := range values {
		if math.IsNaN(mean[i]) || math.IsNaN(sd[i]) {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		upper[i] = mean[i] + k*sd[i]
		lower[i] = mean[i] - k*sd[i]
	}
	return upper, lower, nil
}

func rolling(values []float64, window int, agg func([]float64) float64) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	out := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := values[i-window+1 : i+1]
		if floats.HasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		out[i] = agg(w)
	}
	return out, nil
}

// Latest returns the last defined value of a derived series.
func Latest(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], true
		}
	}
	return math.NaN(), false
}
