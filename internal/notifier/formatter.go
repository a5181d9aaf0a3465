package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"InvestmentDashboard/internal/calculator"
	"InvestmentDashboard/internal/model"
)

// FormatDigest formats a watchlist run into a Telegram HTML message.
func FormatDigest(results []model.TickerResult, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Watchlist digest</b> | %s\n", at.Format("2006-01-02 15:04")))
	if len(results) == 0 {
		b.WriteString("\nNo tickers in the watchlist.\n")
		return b.String()
	}

	for _, r := range results {
		b.WriteString("\n")
		if !r.OK() {
			cause := "unknown error"
			if r.Err != nil {
				cause = r.Err.Error()
			}
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: %s\n", html.EscapeString(r.Symbol), html.EscapeString(cause)))
			continue
		}

		rep := r.Report
		b.WriteString(fmt.Sprintf("<b>%s</b> %s\n", html.EscapeString(r.Symbol), num(rep.LastClose())))
		b.WriteString(fmt.Sprintf("  SMA50 %s | SMA200 %s\n", latest(rep.SMA50), latest(rep.SMA200)))
		b.WriteString(fmt.Sprintf("  Bands %s - %s\n", latest(rep.LowerBand), latest(rep.UpperBand)))
		b.WriteString(fmt.Sprintf("  Trend y = %.2fx + %.2f | CAGR %.2f%%\n", rep.Trend.Slope, rep.Trend.Intercept, rep.CAGR*100))
		b.WriteString(fmt.Sprintf("  52w %s - %s\n", num(rep.Low52w), num(rep.High52w)))
		if pos, ok := rangePosition(rep); ok {
			b.WriteString(fmt.Sprintf("  %s\n", pos))
		}
	}
	return b.String()
}

// FormatUsage lists the commands the bot understands.
func FormatUsage() string {
	return "Available commands:\n• /watch AAPL, TSLA - digest for the given tickers\n• /watch - digest for the default watchlist\n• /help - this message"
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func latest(series []float64) string {
	v, ok := calculator.Latest(series)
	if !ok {
		return "n/a"
	}
	return num(v)
}

// rangePosition describes where the last close sits inside the 52-week range.
func rangePosition(rep *model.TickerReport) (string, bool) {
	last := rep.LastClose()
	span := rep.High52w - rep.Low52w
	if math.IsNaN(last) || span <= 0 {
		return "", false
	}
	pct := (last - rep.Low52w) / span * 100
	switch {
	case pct >= 90:
		return fmt.Sprintf("🔺 near 52w high (%.0f%%)", pct), true
	case pct <= 10:
		return fmt.Sprintf("🔻 near 52w low (%.0f%%)", pct), true
	}
	return "", false
}
