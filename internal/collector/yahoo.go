package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"InvestmentDashboard/internal/model"
)

const (
	DefaultYahooBaseURL   = "https://query1.finance.yahoo.com"
	DefaultYahooCookieURL = "https://fc.yahoo.com"

	crumbKey = "crumb"
)

// YahooOptions configures a YahooFetcher. Zero values fall back to defaults.
type YahooOptions struct {
	BaseURL   string
	CookieURL string
	Range     string // history window, e.g. "5y"
	Interval  string // bar size, e.g. "1d"
	Proxy     string
	Timeout   time.Duration
}

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	client    *resty.Client
	opts      YahooOptions
	crumbs    *cache.Cache
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultYahooBaseURL
	}
	if opts.CookieURL == "" {
		opts.CookieURL = DefaultYahooCookieURL
	}
	if opts.Range == "" {
		opts.Range = "5y"
	}
	if opts.Interval == "" {
		opts.Interval = "1d"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeaders(map[string]string{
			"Accept":          "application/json",
			"Accept-Encoding": "gzip, br",
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		}).
		OnAfterResponse(decompressMiddleware)
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	return &YahooFetcher{
		client: client,
		opts:   opts,
		crumbs: cache.New(time.Hour, 10*time.Minute),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Null entries in the quote arrays decode to nil pointers.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				GMTOffset            int    `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}

// FetchHistory returns daily bars for the configured trailing range.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", f.yahooSymbol(symbol)).
		SetQueryParams(map[string]string{
			"range":    f.opts.Range,
			"interval": f.opts.Interval,
		}).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(resp.Body(), &chart)
	if decodeErr == nil && chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	loc := time.FixedZone(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := valueAt(quote.Open, i)
		h := valueAt(quote.High, i)
		l := valueAt(quote.Low, i)
		c := valueAt(quote.Close, i)
		if math.IsNaN(o) && math.IsNaN(h) && math.IsNaN(l) && math.IsNaN(c) {
			continue // non-trading row
		}
		local := time.Unix(ts, 0).In(loc)
		bars = append(bars, model.OHLCV{
			Time:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: valueAt(quote.Volume, i),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: %w", ErrNoData)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      normalizeBars(bars),
		FetchedAt: time.Now(),
	}, nil
}

// normalizeBars sorts bars chronologically and keeps only the last bar for
// each date; Yahoo appends a live bar that can repeat the latest session.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

type yahooRaw struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yahooStatement struct {
	EndDate      *yahooRaw `json:"endDate"`
	TotalRevenue *yahooRaw `json:"totalRevenue"`
	NetIncome    *yahooRaw `json:"netIncome"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory *struct {
				Statements []yahooStatement `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFinancials returns annual Total Revenue and Net Income from the
// quoteSummary income statement module.
func (f *YahooFetcher) FetchFinancials(ctx context.Context, symbol string) (*model.FinancialsTable, error) {
	crumb, err := f.crumb(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", f.yahooSymbol(symbol)).
		SetQueryParams(map[string]string{
			"modules": "incomeStatementHistory",
			"crumb":   crumb,
		}).
		Get("/v10/finance/quoteSummary/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("yahoo summary: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		f.crumbs.Delete(crumbKey)
		return nil, fmt.Errorf("yahoo summary: crumb rejected")
	}

	var summary yahooSummary
	decodeErr := json.Unmarshal(resp.Body(), &summary)
	if decodeErr == nil && summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", summary.QuoteSummary.Error.Description)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo summary: status %d", resp.StatusCode())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo summary decode: %w", decodeErr)
	}
	if len(summary.QuoteSummary.Result) == 0 || summary.QuoteSummary.Result[0].IncomeStatementHistory == nil {
		return nil, fmt.Errorf("yahoo summary: %w", ErrNoData)
	}

	return buildFinancials(symbol, summary.QuoteSummary.Result[0].IncomeStatementHistory.Statements)
}

func buildFinancials(symbol string, statements []yahooStatement) (*model.FinancialsTable, error) {
	dated := make([]yahooStatement, 0, len(statements))
	for _, s := range statements {
		if s.EndDate != nil && s.EndDate.Raw != nil {
			dated = append(dated, s)
		}
	}
	if len(dated) == 0 {
		return nil, fmt.Errorf("yahoo summary: %w", ErrNoData)
	}
	sort.Slice(dated, func(i, j int) bool { return *dated[i].EndDate.Raw < *dated[j].EndDate.Raw })

	table := &model.FinancialsTable{
		Symbol:  symbol,
		Periods: make([]string, len(dated)),
		Items:   make(map[string][]float64),
	}
	revenue := make([]float64, len(dated))
	income := make([]float64, len(dated))
	var hasRevenue, hasIncome bool
	for i, s := range dated {
		table.Periods[i] = s.EndDate.Fmt
		if table.Periods[i] == "" {
			table.Periods[i] = time.Unix(int64(*s.EndDate.Raw), 0).UTC().Format("2006-01-02")
		}
		revenue[i], income[i] = math.NaN(), math.NaN()
		if s.TotalRevenue != nil && s.TotalRevenue.Raw != nil {
			revenue[i] = *s.TotalRevenue.Raw
			hasRevenue = true
		}
		if s.NetIncome != nil && s.NetIncome.Raw != nil {
			income[i] = *s.NetIncome.Raw
			hasIncome = true
		}
	}
	if hasRevenue {
		table.Items[model.LineTotalRevenue] = revenue
	}
	if hasIncome {
		table.Items[model.LineNetIncome] = income
	}
	return table, nil
}

// crumb returns the session crumb quoteSummary requires, bootstrapping the
// session cookie on first use.
func (f *YahooFetcher) crumb(ctx context.Context) (string, error) {
	if v, ok := f.crumbs.Get(crumbKey); ok {
		return v.(string), nil
	}

	// fc.yahoo.com answers 404 but still sets the session cookie.
	if _, err := f.client.R().SetContext(ctx).Get(f.opts.CookieURL); err != nil {
		return "", fmt.Errorf("yahoo cookie: %w", err)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(resp.String())
	if !resp.IsSuccess() || crumb == "" {
		return "", fmt.Errorf("yahoo crumb: status %d", resp.StatusCode())
	}

	f.crumbs.Set(crumbKey, crumb, cache.DefaultExpiration)
	log.Debug().Str("source", f.Name()).Msg("yahoo crumb refreshed")
	return crumb, nil
}
