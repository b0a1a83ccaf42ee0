package notifier

import (
	"fmt"
	"html"
	"strings"

	"PriceSentinel/internal/model"
)

// FormatAnalysis renders one analysis result as a Telegram HTML message.
func FormatAnalysis(res *model.AnalysisResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> @ %s | %s\n\n",
		html.EscapeString(res.ItemID), html.EscapeString(res.Platform), res.ComputedAt.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Latest: %.2f | Avg: %.2f (%+.2f%%)\n", res.Latest, res.Average, res.DeviationPct))
	b.WriteString(fmt.Sprintf("High: %.2f | Low: %.2f | Points: %d\n\n", res.Highest, res.Lowest, res.Points))

	b.WriteString("📈 <b>Indicators:</b>\n")
	b.WriteString(fmt.Sprintf("  RSI: %s\n", res.RSI))
	if res.MACD.Available() {
		b.WriteString(fmt.Sprintf("  MACD: %s / %s (hist %s)\n", res.MACD.Line, res.MACD.Signal, res.MACD.Histogram))
	} else {
		b.WriteString("  MACD: N/A\n")
	}
	if res.Bollinger.Available() {
		b.WriteString(fmt.Sprintf("  Bollinger: %s / %s / %s\n", res.Bollinger.Lower, res.Bollinger.Mid, res.Bollinger.Upper))
	} else {
		b.WriteString("  Bollinger: N/A\n")
	}
	b.WriteString(fmt.Sprintf("  Trend: %s (%+d)\n\n", res.Trend, res.TrendScore))

	b.WriteString(fmt.Sprintf("💡 <b>Advice:</b> %s %s (confidence %d%%)\n", adviceIcon(res.Advice), res.Advice, res.Confidence))
	return b.String()
}

// FormatAlert renders an alert with the analysis that raised it.
func FormatAlert(a *model.Alert) string {
	var b strings.Builder
	switch a.Kind {
	case model.AlertDeviation:
		b.WriteString(fmt.Sprintf("⚠️ <b>Price deviation</b>: %+.2f%% from average (threshold %.2f%%)\n\n", a.Value, a.Threshold))
	case model.AlertStrongSignal:
		b.WriteString(fmt.Sprintf("🚨 <b>Strong signal</b>: confidence %.0f%% (threshold %.0f%%)\n\n", a.Value, a.Threshold))
	default:
		b.WriteString(fmt.Sprintf("🔔 <b>%s</b>\n\n", a.Kind))
	}
	b.WriteString(FormatAnalysis(&a.Result))
	return b.String()
}

// FormatWatchlist lists the watched pairs.
func FormatWatchlist(entries []model.WatchlistEntry) string {
	if len(entries) == 0 {
		return "👀 Watchlist is empty"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👀 <b>Watchlist</b> (%d)\n\n", len(entries)))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("• %s @ %s (since %s)\n",
			html.EscapeString(e.ItemID), html.EscapeString(e.Platform), e.AddedAt.Format("2006-01-02")))
	}
	return b.String()
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>PriceSentinel commands</b>\n\n")
	b.WriteString("/analyze - analyze configured targets now\n")
	b.WriteString("/watch &lt;item&gt; &lt;platform&gt; - add to watchlist\n")
	b.WriteString("/unwatch &lt;item&gt; &lt;platform&gt; - remove from watchlist\n")
	b.WriteString("/watchlist - show watched pairs\n")
	b.WriteString("/help - show this message\n")
	return b.String()
}

func adviceIcon(a model.Advice) string {
	switch a.Direction() {
	case "BUY":
		return "🟢"
	case "SELL":
		return "🔴"
	default:
		return "⚪"
	}
}
