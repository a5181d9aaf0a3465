package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"InvestmentDashboard/internal/collector"
	"InvestmentDashboard/internal/model"
)

// Analyzer produces the computed report for one ticker.
// *collector.Collector satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*model.TickerReport, error)
}

// Controller drives per-ticker processing for a parsed watchlist.
type Controller struct {
	analyzer Analyzer
}

// NewController creates a Controller backed by analyzer.
func NewController(analyzer Analyzer) *Controller {
	return &Controller{analyzer: analyzer}
}

// Run processes symbols one after another in input order and returns one
// result per symbol. A failing ticker never stops the ones after it. Once ctx
// is done, every remaining ticker fails with ctx.Err().
func (c *Controller) Run(ctx context.Context, symbols []string) []model.TickerResult {
	results := make([]model.TickerResult, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(symbol, model.StageFetching, err))
			continue
		}
		results = append(results, c.runOne(ctx, symbol))
	}
	return results
}

func (c *Controller) runOne(ctx context.Context, symbol string) (result model.TickerResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("symbol", symbol).Interface("panic", r).Msg("ticker processing panicked")
			result = failed(symbol, model.StageComputing, fmt.Errorf("internal error: %v", r))
		}
	}()

	report, err := c.analyzer.Analyze(ctx, symbol)
	if err != nil {
		stage := model.StageFetching
		var se *collector.StageError
		if errors.As(err, &se) {
			stage = se.Stage
		}
		log.Error().Str("symbol", symbol).Str("stage", string(stage)).Err(err).Msg("ticker failed")
		return failed(symbol, stage, err)
	}

	log.Info().
		Str("symbol", symbol).
		Int("bars", report.Series.Len()).
		Dur("took", time.Since(start)).
		Msg("ticker rendered")
	return model.TickerResult{Symbol: symbol, Stage: model.StageRendered, Report: report}
}

func failed(symbol string, stage model.Stage, err error) model.TickerResult {
	var se *collector.StageError
	if !errors.As(err, &se) {
		err = &collector.StageError{Stage: stage, Err: err}
	}
	return model.TickerResult{Symbol: symbol, Stage: model.StageFailed, Err: err}
}
