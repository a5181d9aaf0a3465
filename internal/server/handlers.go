package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"InvestmentDashboard/internal/calculator"
	"InvestmentDashboard/internal/composer"
	"InvestmentDashboard/internal/config"
	"InvestmentDashboard/internal/model"
	"InvestmentDashboard/internal/watchlist"
)

type dashboardPage struct {
	Title     string
	Input     string
	Panels    []composer.Panel
	EChartsJS string
}

// tickersParam returns the raw watchlist text. An absent parameter means the
// configured default; a present but blank one stays blank.
func (s *Server) tickersParam(c *gin.Context) string {
	if v, ok := c.GetQuery("tickers"); ok {
		return v
	}
	return s.cfg.Dashboard.DefaultTickers
}

func (s *Server) dashboard(c *gin.Context) {
	input := s.tickersParam(c)
	symbols := watchlist.Parse(input)

	page := dashboardPage{
		Title:     s.cfg.Dashboard.Title,
		Input:     input,
		EChartsJS: composer.EChartsAssetURL,
	}
	if len(symbols) > 0 {
		page.Panels = composer.ComposeAll(s.runner.Run(c.Request.Context(), symbols))
	}
	c.HTML(http.StatusOK, "dashboard.html", page)
}

// tickerSummary is the JSON view of one ticker. Values that do not exist
// yet, like a 200-day average on a young listing, are omitted.
type tickerSummary struct {
	Symbol     string   `json:"symbol"`
	Status     string   `json:"status"`
	Error      string   `json:"error,omitempty"`
	Bars       int      `json:"bars,omitempty"`
	LastClose  *float64 `json:"last_close,omitempty"`
	SMA50      *float64 `json:"sma50,omitempty"`
	SMA200     *float64 `json:"sma200,omitempty"`
	UpperBand  *float64 `json:"upper_band,omitempty"`
	LowerBand  *float64 `json:"lower_band,omitempty"`
	Slope      *float64 `json:"trend_slope,omitempty"`
	Intercept  *float64 `json:"trend_intercept,omitempty"`
	CAGR       *float64 `json:"cagr,omitempty"`
	High52w    *float64 `json:"high_52w,omitempty"`
	Low52w     *float64 `json:"low_52w,omitempty"`
	Financials bool     `json:"financials_available"`
}

func summarize(r model.TickerResult) tickerSummary {
	out := tickerSummary{Symbol: r.Symbol, Status: string(r.Stage)}
	if !r.OK() {
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
		return out
	}

	rep := r.Report
	out.Bars = rep.Series.Len()
	out.LastClose = finite(rep.LastClose())
	out.SMA50 = latest(rep.SMA50)
	out.SMA200 = latest(rep.SMA200)
	out.UpperBand = latest(rep.UpperBand)
	out.LowerBand = latest(rep.LowerBand)
	out.Slope = finite(rep.Trend.Slope)
	out.Intercept = finite(rep.Trend.Intercept)
	out.CAGR = finite(rep.CAGR)
	out.High52w = finite(rep.High52w)
	out.Low52w = finite(rep.Low52w)
	_, hasRevenue := rep.Financials.Table.Row(model.LineTotalRevenue)
	_, hasIncome := rep.Financials.Table.Row(model.LineNetIncome)
	out.Financials = rep.Financials.Err == nil && hasRevenue && hasIncome
	return out
}

func latest(series []float64) *float64 {
	if v, ok := calculator.Latest(series); ok {
		return &v
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (s *Server) watchlistAPI(c *gin.Context) {
	symbols := watchlist.Parse(s.tickersParam(c))
	results := s.runner.Run(c.Request.Context(), symbols)

	out := make([]tickerSummary, len(results))
	for i, r := range results {
		out[i] = summarize(r)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) health(c *gin.Context) {
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    config.Version,
		"commit":     config.Commit,
		"build_date": config.BuildDate,
	})
}
