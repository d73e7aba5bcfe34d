package notifier

import (
	"fmt"
	"strings"
	"time"

	"SignalDesk/internal/model"
)

var signalEmoji = map[model.Signal]string{
	model.SignalStrongBuy:  "🟢",
	model.SignalBuy:        "🟩",
	model.SignalStrongSell: "🔴",
	model.SignalSell:       "🟥",
}

// FormatRefreshReport formats the actionable signals of one refresh pass into
// a Telegram message. Returns "" when there is nothing actionable.
func FormatRefreshReport(tf model.Timeframe, records []model.SignalRecord) string {
	actionable := make([]model.SignalRecord, 0, len(records))
	for _, rec := range records {
		if rec.Signal.Actionable() {
			actionable = append(actionable, rec)
		}
	}
	if len(actionable) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>SignalDesk</b> | %s | %s\n\n",
		tf, time.Now().Format("2006-01-02 15:04")))

	for _, rec := range actionable {
		r := rec.Row
		b.WriteString(fmt.Sprintf("%s <b>%s</b> %s @ %.2f\n",
			signalEmoji[rec.Signal], rec.Signal, r.Symbol, r.Close))
		b.WriteString(fmt.Sprintf("   K=%.2f D=%.2f CCI=%.2f ADX=%s\n",
			r.StochK, r.StochD, r.CCI, r.ADXDisplay()))
		b.WriteString(fmt.Sprintf("   slope K=%.2f D=%.2f\n", r.SlopeK, r.SlopeD))
	}
	return b.String()
}

// FormatSignalList formats the latest records of a timeframe for the
// /signals command, including rows without an actionable signal.
func FormatSignalList(tf model.Timeframe, records []model.SignalRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>latest %s scan</b>\n\n", tf))
	if len(records) == 0 {
		b.WriteString("no data yet, trigger a refresh first")
		return b.String()
	}
	for _, rec := range records {
		r := rec.Row
		marker := signalEmoji[rec.Signal]
		if marker == "" {
			marker = "⚪"
		}
		b.WriteString(fmt.Sprintf("%s %s: %s (K=%.1f D=%.1f CCI=%.1f ADX=%s)\n",
			marker, r.Symbol, rec.Signal, r.StochK, r.StochD, r.CCI, r.ADXDisplay()))
		if rec.Note != "" {
			b.WriteString(fmt.Sprintf("   📝 %s\n", rec.Note))
		}
	}
	return b.String()
}
