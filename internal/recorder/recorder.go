package recorder

import (
	"math"
	"time"

	"InvestmentDashboard/internal/calculator"
	"InvestmentDashboard/internal/model"
)

// Snapshot is one journal row: the headline numbers of a ticker at the time
// the scheduled job ran. Pointer fields are nil when the value is undefined.
type Snapshot struct {
	Timestamp  time.Time
	Symbol     string
	Status     string
	Error      string
	LastClose  *float64
	SMA50      *float64
	SMA200     *float64
	UpperBand  *float64
	LowerBand  *float64
	TrendSlope *float64
	CAGR       *float64
	High52w    *float64
	Low52w     *float64
}

// NewSnapshot flattens a ticker result into a journal row.
func NewSnapshot(r model.TickerResult, at time.Time) *Snapshot {
	s := &Snapshot{Timestamp: at, Symbol: r.Symbol, Status: string(r.Stage)}
	if !r.OK() {
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		return s
	}
	rep := r.Report
	s.LastClose = value(rep.LastClose())
	s.SMA50 = lastValue(rep.SMA50)
	s.SMA200 = lastValue(rep.SMA200)
	s.UpperBand = lastValue(rep.UpperBand)
	s.LowerBand = lastValue(rep.LowerBand)
	s.TrendSlope = value(rep.Trend.Slope)
	s.CAGR = value(rep.CAGR)
	s.High52w = value(rep.High52w)
	s.Low52w = value(rep.Low52w)
	return s
}

func value(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// lastValue is the most recent defined point of a series.
func lastValue(series []float64) *float64 {
	v, ok := calculator.Latest(series)
	if !ok {
		return nil
	}
	return value(v)
}

// Recorder persists snapshot rows for later analysis.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	Close() error
}
