package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"InvestmentDashboard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without explicit data get generated bars around Price.
type MockFetcher struct {
	Price         float64
	Days          int
	History       map[string]*model.PriceSeries
	Financials    map[string]*model.FinancialsTable
	HistoryErr    map[string]error
	FinancialsErr map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string) (*model.PriceSeries, error) {
	m.record("history:" + symbol)
	if err, ok := m.HistoryErr[symbol]; ok {
		return nil, err
	}
	if s, ok := m.History[symbol]; ok {
		return s, nil
	}
	days := m.Days
	if days <= 0 {
		days = 5 * 252
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      generateMockBars(m.Price, days),
		FetchedAt: time.Now(),
	}, nil
}

func (m *MockFetcher) FetchFinancials(_ context.Context, symbol string) (*model.FinancialsTable, error) {
	m.record("financials:" + symbol)
	if err, ok := m.FinancialsErr[symbol]; ok {
		return nil, err
	}
	if t, ok := m.Financials[symbol]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("mock financials for %s: %w", symbol, ErrNoData)
}

// Calls returns the requests seen so far, in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockFetcher) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	if basePrice <= 0 {
		basePrice = 100
	}
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.02*math.Sin(float64(i)/15))
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
