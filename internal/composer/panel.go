package composer

import (
	"fmt"
	"html/template"
	"math"
	"regexp"
	"strings"

	"InvestmentDashboard/internal/model"
)

const (
	PriceSubheader     = "Historical Price with Moving Averages and Bands"
	FinancialSubheader = "Revenue and Net Income"
	FinancialFallback  = "Unable to retrieve revenue and net income data."
	TrendCommentary    = "The trendline represents the linear regression of the stock's closing prices over time. " +
		"The slope indicates the average daily change in price, and the intercept represents the estimated price at day zero."

	// EChartsAssetURL serves the echarts runtime the chart snippets expect.
	EChartsAssetURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"
)

// Panel is everything the page shows for one ticker. A failed ticker only
// carries Symbol, Title and Error.
type Panel struct {
	Symbol string
	Title  string
	Error  string

	PriceHeading string
	PriceChart   template.HTML
	Equation     string
	Commentary   string
	CAGR         string
	Range52w     string
	LastClose    string

	FinancialHeading string
	FinancialChart   template.HTML
	FinancialNote    string
}

// Failed reports whether the panel is an error banner.
func (p Panel) Failed() bool { return p.Error != "" }

// Compose builds the panel for one ticker result. It never fails: problems
// with the statements chart degrade to the fallback note.
func Compose(result model.TickerResult) Panel {
	return compose(0, result)
}

// ComposeAll builds panels in order. Chart element ids include the position
// so a symbol listed twice still gets distinct charts.
func ComposeAll(results []model.TickerResult) []Panel {
	panels := make([]Panel, len(results))
	for i, r := range results {
		panels[i] = compose(i, r)
	}
	return panels
}

func compose(idx int, result model.TickerResult) Panel {
	p := Panel{
		Symbol: result.Symbol,
		Title:  fmt.Sprintf("%s - Stock Analysis", result.Symbol),
	}
	if !result.OK() {
		p.Error = ErrorBanner(result.Symbol, result.Err)
		return p
	}

	r := result.Report
	p.PriceHeading = PriceSubheader
	p.FinancialHeading = FinancialSubheader
	p.PriceChart = priceChart(chartID("price", idx, result.Symbol), r)
	p.Equation = FormatEquation(r.Trend)
	p.Commentary = TrendCommentary
	p.CAGR = FormatPercent(r.CAGR)
	p.Range52w = fmt.Sprintf("%.2f - %.2f", r.Low52w, r.High52w)
	if c := r.LastClose(); !math.IsNaN(c) {
		p.LastClose = fmt.Sprintf("%.2f", c)
	}

	if chart, ok := financialChart(chartID("fin", idx, result.Symbol), r.Financials); ok {
		p.FinancialChart = chart
	} else {
		p.FinancialNote = FinancialFallback
	}
	return p
}

// ErrorBanner is the message shown in place of a ticker that failed.
func ErrorBanner(symbol string, err error) string {
	cause := "unknown error"
	if err != nil {
		cause = err.Error()
	}
	return fmt.Sprintf("Unable to fetch data for %s. Error: %s", symbol, cause)
}

// FormatEquation renders the fitted line as "y = 2.00x + 10.00".
func FormatEquation(t model.Trend) string {
	return fmt.Sprintf("y = %.2fx + %.2f", t.Slope, t.Intercept)
}

// FormatPercent renders a ratio with two decimals, 0.41421 -> "41.42%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// chartID is used as a DOM id and a JS identifier, so symbols like BRK-B or
// ^GSPC are reduced to identifier characters.
func chartID(kind string, idx int, symbol string) string {
	return fmt.Sprintf("%s_%d_%s", kind, idx, nonIdent.ReplaceAllString(strings.ToLower(symbol), "_"))
}
