package composer

import (
	"html/template"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"InvestmentDashboard/internal/model"
)

// echarts skips "-" values, leaving a gap in the line.
const gap = "-"

var gridLine = &opts.SplitLine{
	Show:      opts.Bool(true),
	LineStyle: &opts.LineStyle{Type: "dashed"},
}

func priceChart(id string, r *model.TickerReport) template.HTML {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: id, Width: "100%", Height: "480px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", SplitLine: gridLine}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true), SplitLine: gridLine}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
	)

	dates := make([]string, r.Series.Len())
	for i, d := range r.Series.Dates() {
		dates[i] = d.Format("2006-01-02")
	}

	plain := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	dashed := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})

	line.SetXAxis(dates).
		AddSeries("Close Price", lineData(r.Series.Closes()), plain).
		AddSeries("50-day SMA", lineData(r.SMA50), plain).
		AddSeries("200-day SMA", lineData(r.SMA200), plain).
		AddSeries("Upper Band", lineData(r.UpperBand), plain, dashed).
		AddSeries("Lower Band", lineData(r.LowerBand), plain, dashed).
		AddSeries("Trendline", lineData(r.Trend.Fitted), plain, dashed)

	s := line.RenderSnippet()
	return snippet(s.Element, s.Script)
}

// financialChart draws revenue and net income side by side per fiscal
// period. It reports false when either line item is unavailable.
func financialChart(id string, fin model.FinancialsResult) (template.HTML, bool) {
	if fin.Err != nil || fin.Table == nil {
		return "", false
	}
	revenue, ok := fin.Table.Row(model.LineTotalRevenue)
	if !ok {
		return "", false
	}
	income, ok := fin.Table.Row(model.LineNetIncome)
	if !ok {
		return "", false
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: id, Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: FinancialSubheader}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{SplitLine: gridLine}),
	)
	bar.SetXAxis(fin.Table.Periods).
		AddSeries("Revenue", barData(revenue), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#1f4e9c"})).
		AddSeries("Net Income", barData(income), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2e8b57"}))

	s := bar.RenderSnippet()
	return snippet(s.Element, s.Script), true
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			items[i] = opts.LineData{Value: gap}
			continue
		}
		items[i] = opts.LineData{Value: v}
	}
	return items
}

func barData(values []float64) []opts.BarData {
	items := make([]opts.BarData, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			items[i] = opts.BarData{Value: gap}
			continue
		}
		items[i] = opts.BarData{Value: v}
	}
	return items
}

// snippet marks go-echarts output as trusted HTML for the page template.
func snippet(element, script string) template.HTML {
	return template.HTML(element + script)
}
