package composer

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"InvestmentDashboard/internal/model"
)

func sampleReport(fin model.FinancialsResult) *model.TickerReport {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 5)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: 10 + 2*float64(i)}
	}
	nan := math.NaN()
	return &model.TickerReport{
		Symbol:     "AAPL",
		Series:     &model.PriceSeries{Symbol: "AAPL", Bars: bars},
		SMA50:      []float64{nan, nan, nan, nan, nan},
		SMA200:     []float64{nan, nan, nan, nan, nan},
		UpperBand:  []float64{nan, nan, nan, nan, nan},
		LowerBand:  []float64{nan, nan, nan, nan, nan},
		Trend:      model.Trend{Slope: 2, Intercept: 10, Fitted: []float64{10, 12, 14, 16, 18}},
		CAGR:       0.41421356,
		High52w:    18,
		Low52w:     10,
		Financials: fin,
	}
}

func TestFormatEquation(t *testing.T) {
	tests := []struct {
		trend model.Trend
		want  string
	}{
		{model.Trend{Slope: 2, Intercept: 10}, "y = 2.00x + 10.00"},
		{model.Trend{Slope: 0.1234, Intercept: 99.999}, "y = 0.12x + 100.00"},
		{model.Trend{Slope: -1.5, Intercept: 3}, "y = -1.50x + 3.00"},
	}
	for _, tt := range tests {
		if got := FormatEquation(tt.trend); got != tt.want {
			t.Errorf("FormatEquation(%+v) = %q, want %q", tt.trend, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.41421356); got != "41.42%" {
		t.Errorf("expected 41.42%%, got %s", got)
	}
	if got := FormatPercent(-0.05); got != "-5.00%" {
		t.Errorf("expected -5.00%%, got %s", got)
	}
}

func TestCompose_Success(t *testing.T) {
	fin := model.FinancialsResult{Table: &model.FinancialsTable{
		Symbol:  "AAPL",
		Periods: []string{"2022-09-30", "2023-09-29"},
		Items: map[string][]float64{
			model.LineTotalRevenue: {394e9, 383e9},
			model.LineNetIncome:    {99e9, math.NaN()},
		},
	}}
	p := Compose(model.TickerResult{Symbol: "AAPL", Stage: model.StageRendered, Report: sampleReport(fin)})

	if p.Failed() {
		t.Fatalf("unexpected error banner: %s", p.Error)
	}
	if p.Title != "AAPL - Stock Analysis" {
		t.Errorf("unexpected title %q", p.Title)
	}
	if p.PriceHeading != PriceSubheader || p.FinancialHeading != FinancialSubheader {
		t.Errorf("unexpected headings %q / %q", p.PriceHeading, p.FinancialHeading)
	}
	if p.Equation != "y = 2.00x + 10.00" || p.Commentary != TrendCommentary {
		t.Errorf("unexpected caption %q / %q", p.Equation, p.Commentary)
	}
	if p.CAGR != "41.42%" {
		t.Errorf("unexpected CAGR %q", p.CAGR)
	}
	if p.Range52w != "10.00 - 18.00" || p.LastClose != "18.00" {
		t.Errorf("unexpected range %q / last %q", p.Range52w, p.LastClose)
	}
	for _, series := range []string{"Close Price", "50-day SMA", "200-day SMA", "Upper Band", "Lower Band", "Trendline"} {
		if !strings.Contains(string(p.PriceChart), series) {
			t.Errorf("price chart missing series %q", series)
		}
	}
	if !strings.Contains(string(p.PriceChart), "price_0_aapl") {
		t.Error("price chart missing element id")
	}
	if p.FinancialChart == "" || p.FinancialNote != "" {
		t.Fatalf("expected financial chart, got note %q", p.FinancialNote)
	}
	for _, series := range []string{"Revenue", "Net Income", "2023-09-29"} {
		if !strings.Contains(string(p.FinancialChart), series) {
			t.Errorf("financial chart missing %q", series)
		}
	}
}

func TestCompose_FinancialFallback(t *testing.T) {
	tests := []struct {
		name string
		fin  model.FinancialsResult
	}{
		{"fetch error", model.FinancialsResult{Err: errors.New("timeout")}},
		{"no table", model.FinancialsResult{}},
		{"missing net income", model.FinancialsResult{Table: &model.FinancialsTable{
			Periods: []string{"2023"},
			Items:   map[string][]float64{model.LineTotalRevenue: {1}},
		}}},
		{"misaligned row", model.FinancialsResult{Table: &model.FinancialsTable{
			Periods: []string{"2022", "2023"},
			Items: map[string][]float64{
				model.LineTotalRevenue: {1, 2},
				model.LineNetIncome:    {1},
			},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compose(model.TickerResult{Symbol: "TSLA", Report: sampleReport(tt.fin)})
			if p.FinancialChart != "" {
				t.Error("expected no financial chart")
			}
			if p.FinancialNote != FinancialFallback {
				t.Errorf("expected fallback note, got %q", p.FinancialNote)
			}
			if p.PriceChart == "" || p.CAGR == "" {
				t.Error("price chart and CAGR must still render")
			}
		})
	}
}

func TestCompose_Failed(t *testing.T) {
	p := Compose(model.TickerResult{
		Symbol: "ZZZZ",
		Stage:  model.StageFailed,
		Err:    errors.New("fetch history: no data returned"),
	})
	if !p.Failed() {
		t.Fatal("expected error banner")
	}
	want := "Unable to fetch data for ZZZZ. Error: fetch history: no data returned"
	if p.Error != want {
		t.Errorf("expected %q, got %q", want, p.Error)
	}
	if p.PriceChart != "" || p.FinancialChart != "" || p.CAGR != "" {
		t.Error("failed panel must not carry charts")
	}
}

func TestComposeAll_DistinctIDs(t *testing.T) {
	r := model.TickerResult{Symbol: "BRK-B", Report: sampleReport(model.FinancialsResult{})}
	panels := ComposeAll([]model.TickerResult{r, r})
	if len(panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(panels))
	}
	if !strings.Contains(string(panels[0].PriceChart), "price_0_brk_b") ||
		!strings.Contains(string(panels[1].PriceChart), "price_1_brk_b") {
		t.Error("expected position-qualified chart ids")
	}
}
