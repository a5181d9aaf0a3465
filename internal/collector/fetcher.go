package collector

import (
	"context"
	"errors"

	"InvestmentDashboard/internal/model"
)

// ErrNoData is returned when the provider answers but has nothing for the symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchHistory returns the trailing daily history, oldest bar first.
	FetchHistory(ctx context.Context, symbol string) (*model.PriceSeries, error)
	// FetchFinancials returns annual income statement line items.
	FetchFinancials(ctx context.Context, symbol string) (*model.FinancialsTable, error)
	Name() string
}
