package report

import (
	"fmt"
	"html"
	"time"
)

// BRT is the fixed UTC-3 offset the reports are dated in. The schedule
// package tracks São Paulo DST for triggers; report dates deliberately use
// the fixed offset the published titles always carried.
var BRT = time.FixedZone("BRT", -3*60*60)

// months are the Portuguese month names used in report dates.
var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDate renders a report date, e.g. "28 de agosto de 2026".
func FormatDate(t time.Time) string {
	t = t.In(BRT)
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

// DayTag renders the daily-lock day, e.g. "2026-08-28".
func DayTag(t time.Time) string {
	return t.In(BRT).Format("2006-01-02")
}

// Title builds the published report title.
func Title(pair, date string, number int) string {
	return fmt.Sprintf("📊 Dados de Mercado — %s — %s — Diário — Nº %d", pair, date, number)
}

// ComposeMessage assembles the final HTML message: bold title, report body,
// and the provider attribution footer. The body is model output and goes in
// unescaped so its own formatting survives; title and provider are escaped.
func ComposeMessage(title, body, provider string, elapsed time.Duration) string {
	return fmt.Sprintf("<b>%s</b>\n\n%s\n\n<i>Provedor LLM: %s • %.1fs</i>",
		html.EscapeString(title), body, html.EscapeString(provider), elapsed.Seconds())
}
