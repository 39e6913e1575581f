// Package report turns an analysis bundle into display sections and renders
// them as an HTML dashboard, plain text or an RSS feed of the news.
package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Output formats
// ════════════════════════════════════════════════════════════════════

// Format specifies an output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or html)", s)
	}
}

// ════════════════════════════════════════════════════════════════════
// Report model
// ════════════════════════════════════════════════════════════════════

// Report is the display model of one loaded bundle.
type Report struct {
	Header    string  `json:"header"`
	Symbol    string  `json:"symbol"`
	Summary   []Field `json:"summary"`
	Dividends []Line  `json:"dividends"`
	Splits    []Line  `json:"splits"`
	News      []Card  `json:"news"`
}

// Field is one labelled price statistic. Detail is an optional Indian
// formatted reading of the same value.
type Field struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Detail string `json:"detail,omitempty"`
	Class  string `json:"class,omitempty"` // "positive" or "negative" for the gain field
}

// Line is one event entry.
type Line struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// Card is one news item.
type Card struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Badge       Badge  `json:"badge"`
}

// Badge is the sentiment marker of a news card.
type Badge struct {
	Label string           `json:"label"`
	Tone  models.Sentiment `json:"tone"`
	Color string           `json:"color"` // green, red or gray
}

// Summary labels in display order.
const (
	LabelStartPrice = "Start Price"
	LabelEndPrice   = "End Price"
	LabelGainLoss   = "% Gain/Loss"
	LabelHigh       = "High"
	LabelLow        = "Low"
	LabelVolume     = "Volume"
)

// ════════════════════════════════════════════════════════════════════
// Build
// ════════════════════════════════════════════════════════════════════

// Build maps a result to its display sections. q must be the query that
// produced r; the header is built from q alone.
// Build has no side effects and tolerates nil or empty lists.
func Build(q models.Query, r *models.AnalysisResult) Report {
	rep := Report{
		Symbol:    q.Symbol,
		Summary:   []Field{},
		Dividends: []Line{},
		Splits:    []Line{},
		News:      []Card{},
	}
	rep.Header = fmt.Sprintf("%s (%s to %s)", rep.Symbol, q.StartDate, q.EndDate)
	if r == nil {
		return rep
	}

	if ps := r.PriceSummary; ps != nil {
		start, end := models.Value(ps.StartPrice), models.Value(ps.EndPrice)
		gain := models.Value(ps.GainLossPercent)
		high, low := models.Value(ps.High), models.Value(ps.Low)
		volume := models.Value(ps.TotalVolume)
		rep.Summary = []Field{
			{Label: LabelStartPrice, Value: utils.FormatNumber(start), Detail: utils.FormatINR(start)},
			{Label: LabelEndPrice, Value: utils.FormatNumber(end), Detail: utils.FormatINR(end)},
			{Label: LabelGainLoss, Value: utils.FormatPercent(gain), Class: gainClass(gain)},
			{Label: LabelHigh, Value: utils.FormatNumber(high), Detail: utils.FormatINR(high)},
			{Label: LabelLow, Value: utils.FormatNumber(low), Detail: utils.FormatINR(low)},
			{Label: LabelVolume, Value: utils.FormatNumber(volume), Detail: utils.FormatVolume(volume)},
		}
	}

	for _, d := range r.Events.Dividends {
		rep.Dividends = append(rep.Dividends, Line{
			Date: d.Date,
			Text: fmt.Sprintf("%s — %s", d.Date, utils.FormatRupees(d.Amount)),
		})
	}
	for _, s := range r.Events.Splits {
		rep.Splits = append(rep.Splits, Line{
			Date: s.Date,
			Text: fmt.Sprintf("%s — %s:1", s.Date, utils.FormatNumber(s.SplitRatio)),
		})
	}
	for _, n := range r.News {
		rep.News = append(rep.News, Card{
			Title:       n.Title,
			URL:         n.URL,
			Description: n.Description,
			Source:      n.Source,
			PublishedAt: n.PublishedAt,
			Badge:       BadgeFor(n.Sentiment),
		})
	}
	return rep
}

// BadgeFor classifies a raw sentiment label. Matching is case-insensitive,
// anything unrecognised is shown as neutral, and labels that differ only in
// case yield the same badge.
func BadgeFor(s models.Sentiment) Badge {
	tone := s.Normalize()
	return Badge{Label: string(tone), Tone: tone, Color: toneColor(tone)}
}

func toneColor(s models.Sentiment) string {
	switch s {
	case models.SentimentPositive:
		return "green"
	case models.SentimentNegative:
		return "red"
	default:
		return "gray"
	}
}

func gainClass(pct float64) string {
	switch {
	case pct > 0:
		return "positive"
	case pct < 0:
		return "negative"
	default:
		return ""
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

// GenerateText renders rep for a terminal.
func GenerateText(rep Report) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", rep.Header))
	sb.WriteString(fmt.Sprintf("  Generated: %s\n", ReportTimestamp()))
	sb.WriteString(line + "\n\n")

	sb.WriteString("  ■ PRICE SUMMARY\n")
	for _, f := range rep.Summary {
		if f.Detail != "" && f.Detail != f.Value {
			sb.WriteString(fmt.Sprintf("    %-14s %s (%s)\n", f.Label, f.Value, f.Detail))
		} else {
			sb.WriteString(fmt.Sprintf("    %-14s %s\n", f.Label, f.Value))
		}
	}
	sb.WriteString(thinLine + "\n")

	writeLines := func(title, empty string, lines []Line) {
		sb.WriteString(fmt.Sprintf("\n  ■ %s\n", title))
		if len(lines) == 0 {
			sb.WriteString("    " + empty + "\n")
		}
		for _, l := range lines {
			sb.WriteString("    " + l.Text + "\n")
		}
		sb.WriteString(thinLine + "\n")
	}
	writeLines("DIVIDENDS", "No dividends in this period.", rep.Dividends)
	writeLines("STOCK SPLITS", "No splits in this period.", rep.Splits)

	sb.WriteString("\n  ■ NEWS HIGHLIGHTS\n")
	if len(rep.News) == 0 {
		sb.WriteString("    No news for this period.\n")
	}
	for _, c := range rep.News {
		sb.WriteString(fmt.Sprintf("    [%s] %s\n", strings.ToUpper(c.Badge.Label), c.Title))
		if c.Description != "" {
			sb.WriteString("      " + c.Description + "\n")
		}
		meta := joinNonEmpty(" | ", c.Source, c.PublishedAt)
		if meta != "" {
			sb.WriteString("      " + meta + "\n")
		}
		if c.URL != "" {
			sb.WriteString("      " + c.URL + "\n")
		}
	}
	sb.WriteString(line + "\n")

	return sb.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// ReportTimestamp returns the current IST time formatted for report headers.
func ReportTimestamp() string {
	return utils.FormatDateTimeIST(utils.NowIST())
}
