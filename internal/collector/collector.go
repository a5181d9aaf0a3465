package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"InvestmentDashboard/internal/calculator"
	"InvestmentDashboard/internal/model"
)

// StageError records which lifecycle stage a ticker failed in.
type StageError struct {
	Stage model.Stage
	Err   error
}

func (e *StageError) Error() string { return e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// Collector orchestrates data fetching and indicator computation for one ticker.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Analyze fetches the price history for symbol and derives every series the
// dashboard shows. Fetch and compute failures are returned as *StageError.
// A financial statements failure is kept on the report instead.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.TickerReport, error) {
	series, err := c.Fetcher.FetchHistory(ctx, symbol)
	if err != nil {
		return nil, &StageError{Stage: model.StageFetching, Err: fmt.Errorf("fetch history: %w", err)}
	}
	if series == nil || series.Len() == 0 {
		return nil, &StageError{Stage: model.StageFetching, Err: fmt.Errorf("fetch history: %w", ErrNoData)}
	}

	report, err := Compute(series)
	if err != nil {
		return nil, &StageError{Stage: model.StageComputing, Err: err}
	}

	table, err := c.Fetcher.FetchFinancials(ctx, symbol)
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("financial statements unavailable")
		report.Financials = model.FinancialsResult{Err: fmt.Errorf("fetch financials: %w", err)}
	} else {
		report.Financials = model.FinancialsResult{Table: table}
	}

	return report, nil
}

// Compute derives moving averages, bands, trendline, CAGR and the 52-week
// range from a price series.
func Compute(series *model.PriceSeries) (*model.TickerReport, error) {
	closes := series.Closes()
	report := &model.TickerReport{Symbol: series.Symbol, Series: series}

	var err error
	if report.SMA50, err = calculator.RollingMean(closes, calculator.ShortWindow); err != nil {
		return nil, fmt.Errorf("sma%d: %w", calculator.ShortWindow, err)
	}
	if report.SMA200, err = calculator.RollingMean(closes, calculator.LongWindow); err != nil {
		return nil, fmt.Errorf("sma%d: %w", calculator.LongWindow, err)
	}
	if report.UpperBand, report.LowerBand, err = calculator.Bands(closes, calculator.LongWindow, calculator.BandWidth); err != nil {
		return nil, fmt.Errorf("bands: %w", err)
	}
	if report.Trend, err = calculator.LinearTrend(closes); err != nil {
		return nil, fmt.Errorf("trendline: %w", err)
	}
	if report.CAGR, err = calculator.SeriesCAGR(series); err != nil {
		return nil, fmt.Errorf("cagr: %w", err)
	}

	if h, l, err := calculator.Calculate52WeekRange(series.Bars); err != nil {
		log.Warn().Str("symbol", series.Symbol).Err(err).Msg("52-week range calculation failed, using last close")
		report.High52w = report.LastClose()
		report.Low52w = report.LastClose()
	} else {
		report.High52w = h
		report.Low52w = l
	}

	return report, nil
}
