package model

// Income statement line items used by the dashboard.
const (
	LineTotalRevenue = "Total Revenue"
	LineNetIncome    = "Net Income"
)

// FinancialsTable holds annual statement line items by fiscal period.
// Every row in Items is aligned with Periods; NaN marks a missing value.
type FinancialsTable struct {
	Symbol  string
	Periods []string // fiscal period end dates, oldest first
	Items   map[string][]float64
}

// Row looks up a line item by name.
func (f *FinancialsTable) Row(name string) ([]float64, bool) {
	if f == nil || f.Items == nil {
		return nil, false
	}
	row, ok := f.Items[name]
	if !ok || len(row) != len(f.Periods) {
		return nil, false
	}
	return row, true
}

// FinancialsResult is the outcome of the optional statements sub-feature.
// A non-nil Err never fails the owning ticker.
type FinancialsResult struct {
	Table *FinancialsTable
	Err   error
}
