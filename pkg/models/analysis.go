package models

import "strings"

// AnalysisResult is the bundle returned by the analysis service for one Query.
// It is accepted whole or not at all; see analysis.Client.
type AnalysisResult struct {
	StockSymbol  string        `json:"stock_symbol"  validate:"required"`
	PriceSummary *PriceSummary `json:"price_summary" validate:"required"`
	Events       Events        `json:"events"`
	News         []NewsArticle `json:"news"          validate:"dive"`
}

// PriceSummary holds the price statistics over the requested range. Each
// field is required; zero is a legal value, absence is not.
type PriceSummary struct {
	StartPrice      *float64 `json:"start_price"       validate:"required"`
	EndPrice        *float64 `json:"end_price"         validate:"required"`
	GainLossPercent *float64 `json:"gain_loss_percent" validate:"required"`
	High            *float64 `json:"high"              validate:"required"`
	Low             *float64 `json:"low"               validate:"required"`
	TotalVolume     *float64 `json:"total_volume"      validate:"required"`
}

// Float returns a pointer to v, for building a PriceSummary by hand.
func Float(v float64) *float64 { return &v }

// Value dereferences a summary field; a missing field reads as zero.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Events groups the corporate actions detected in the range.
type Events struct {
	Dividends []Dividend `json:"dividends" validate:"dive"`
	Splits    []Split    `json:"splits"    validate:"dive"`
}

// Dividend is a single dividend payout. Amount is in rupees.
type Dividend struct {
	Date   string  `json:"date"   validate:"required"`
	Amount float64 `json:"amount"`
}

// Split is a stock split, read as SplitRatio:1.
type Split struct {
	Date       string  `json:"date"        validate:"required"`
	SplitRatio float64 `json:"split_ratio"`
}

// NewsArticle is a news item scored by the service.
type NewsArticle struct {
	Title       string    `json:"title"        validate:"required"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	PublishedAt string    `json:"published_at"`
	Sentiment   Sentiment `json:"sentiment"`
}

// Sentiment is the service's label for a news item. The raw label is kept
// as received; use Normalize for classification and display.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Normalize folds case and maps anything unrecognised (including empty) to neutral.
func (s Sentiment) Normalize() Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(string(s)))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// EnsureLists replaces absent lists with empty ones so that callers can range
// and marshal them without nil checks.
func (r *AnalysisResult) EnsureLists() {
	if r.Events.Dividends == nil {
		r.Events.Dividends = []Dividend{}
	}
	if r.Events.Splits == nil {
		r.Events.Splits = []Split{}
	}
	if r.News == nil {
		r.News = []NewsArticle{}
	}
}
