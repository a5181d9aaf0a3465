package model

// Stage tracks where a ticker is in its fetch/compute/render lifecycle.
type Stage string

const (
	StageFetching  Stage = "fetching"
	StageComputing Stage = "computing"
	StageRendered  Stage = "rendered"
	StageFailed    Stage = "failed"
)

// Trend is an ordinary least-squares fit of close price against the
// 0-based trading-day index.
type Trend struct {
	Slope     float64
	Intercept float64
	Fitted    []float64
}

// TickerReport holds everything derived for one symbol in a single pass.
// Derived series are aligned with Series.Bars; NaN means no value.
type TickerReport struct {
	Symbol    string
	Series    *PriceSeries
	SMA50     []float64
	SMA200    []float64
	UpperBand []float64
	LowerBand []float64
	Trend     Trend
	CAGR      float64
	High52w   float64
	Low52w    float64

	Financials FinancialsResult
}

// LastClose returns the most recent close, or 0 for an empty series.
func (r *TickerReport) LastClose() float64 {
	if r.Series == nil || len(r.Series.Bars) == 0 {
		return 0
	}
	return r.Series.Bars[len(r.Series.Bars)-1].Close
}

// TickerResult is the typed per-ticker outcome handed to the rendering layer.
// Exactly one of Report and Err is set.
type TickerResult struct {
	Symbol string
	Stage  Stage
	Report *TickerReport
	Err    error
}

// OK reports whether the ticker rendered successfully.
func (t TickerResult) OK() bool {
	return t.Err == nil && t.Report != nil
}
