package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"InsiderWatch/internal/model"
)

// FormatAlert formats a primary-event change for one ticker.
func FormatAlert(report model.TickerReport, previous model.EventType) string {
	var b strings.Builder
	p := report.Primary
	if p == nil {
		return ""
	}

	b.WriteString(fmt.Sprintf("%s <b>%s</b> | %s\n", p.Icon, html.EscapeString(report.Ticker), html.EscapeString(p.Label)))
	if previous != "" {
		b.WriteString(fmt.Sprintf("was: %s\n", previous.Display().Label))
	}
	b.WriteString(fmt.Sprintf("<i>%s</i>\n\n", html.EscapeString(p.Tooltip)))
	writeEvents(&b, report.Events)
	b.WriteString(fmt.Sprintf("\nas of %s", report.AsOf))
	return b.String()
}

// FormatReport formats one ticker's classification for the /events command.
func FormatReport(report model.TickerReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>%s</b> | %s\n\n", html.EscapeString(report.Ticker), report.AsOf))

	if report.Error != "" {
		b.WriteString(fmt.Sprintf("⚠️ data unavailable: %s\n", html.EscapeString(report.Error)))
		return b.String()
	}
	if len(report.Events) == 0 {
		b.WriteString("No insider purchase events.\n")
		return b.String()
	}
	if p := report.Primary; p != nil {
		b.WriteString(fmt.Sprintf("Primary: %s %s\n\n", p.Icon, html.EscapeString(p.Label)))
	}
	writeEvents(&b, report.Events)
	return b.String()
}

func writeEvents(b *strings.Builder, events []model.EventSummary) {
	for _, e := range events {
		d := e.Type.Display()
		dates := make([]string, 0, len(e.Dates))
		for _, dt := range e.Dates {
			dates = append(dates, dt.String())
		}
		b.WriteString(fmt.Sprintf("%s %s ×%d: %s\n", d.Icon, d.Label, e.Count, strings.Join(dates, ", ")))
	}
}

// FormatLatest formats the cached snapshot, listing only tickers with a primary event.
func FormatLatest(reports []model.TickerReport, updatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("📋 <b>Latest enrichment</b>")
	if !updatedAt.IsZero() {
		b.WriteString(fmt.Sprintf(" | %s", updatedAt.UTC().Format("2006-01-02 15:04")))
	}
	b.WriteString("\n\n")

	shown, failed := 0, 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
			continue
		}
		if r.Primary == nil {
			continue
		}
		shown++
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s\n", r.Primary.Icon, html.EscapeString(r.Ticker), html.EscapeString(r.Primary.Label)))
	}
	if shown == 0 {
		b.WriteString("No primary events.\n")
	}
	if failed > 0 {
		b.WriteString(fmt.Sprintf("\n%d ticker(s) unavailable\n", failed))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "<b>Commands</b>\n" +
		"/events TICKER - classify a ticker now\n" +
		"/latest - primary events from the last enrichment\n" +
		"/help - this message"
}
