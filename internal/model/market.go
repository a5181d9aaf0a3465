package model

import "time"

// OHLCV represents a single daily bar. Close is NaN when the provider
// returned no value for that session.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the raw daily history for one symbol, oldest bar first.
type PriceSeries struct {
	Symbol    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the closing prices in bar order.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates returns the bar timestamps in bar order.
func (p *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(p.Bars))
	for i, b := range p.Bars {
		dates[i] = b.Time
	}
	return dates
}

// Len returns the number of bars.
func (p *PriceSeries) Len() int { return len(p.Bars) }
