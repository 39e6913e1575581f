package report

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/stockdash/internal/analysis"
	"github.com/seenimoa/stockdash/internal/view"
	"github.com/seenimoa/stockdash/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func sampleQuery() models.Query {
	return models.Query{
		Symbol:    "RELIANCE.NS",
		StartDate: models.NewDate(2025, 6, 1),
		EndDate:   models.NewDate(2025, 6, 30),
	}
}

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		StockSymbol: "RELIANCE.NS",
		PriceSummary: &models.PriceSummary{
			StartPrice:      models.Float(1400),
			EndPrice:        models.Float(1470),
			GainLossPercent: models.Float(5.0),
			High:            models.Float(1482.5),
			Low:             models.Float(1391.2),
			TotalVolume:     models.Float(123456789),
		},
		Events: models.Events{
			Dividends: []models.Dividend{{Date: "2025-06-15", Amount: 8.5}},
			Splits:    []models.Split{},
		},
		News: []models.NewsArticle{{
			Title:       "Reliance shares slip",
			URL:         "https://example.com/a",
			Description: "Weak refining margins",
			Source:      "Mint",
			PublishedAt: "2025-06-20T09:30:00Z",
			Sentiment:   "Negative",
		}},
	}
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return doc
}

// ════════════════════════════════════════════════════════════════════
// Build
// ════════════════════════════════════════════════════════════════════

func TestBuildRelianceExample(t *testing.T) {
	rep := Build(sampleQuery(), sampleResult())

	if rep.Header != "RELIANCE.NS (2025-06-01 to 2025-06-30)" {
		t.Errorf("Header: got %q", rep.Header)
	}

	want := []struct{ label, value string }{
		{"Start Price", "1400"},
		{"End Price", "1470"},
		{"% Gain/Loss", "5%"},
		{"High", "1482.5"},
		{"Low", "1391.2"},
		{"Volume", "123456789"},
	}
	if len(rep.Summary) != len(want) {
		t.Fatalf("Summary: got %d fields, want %d", len(rep.Summary), len(want))
	}
	for i, w := range want {
		if rep.Summary[i].Label != w.label || rep.Summary[i].Value != w.value {
			t.Errorf("Summary[%d]: got %s=%s, want %s=%s", i, rep.Summary[i].Label, rep.Summary[i].Value, w.label, w.value)
		}
	}
	if rep.Summary[2].Class != "positive" {
		t.Errorf("gain class: got %q", rep.Summary[2].Class)
	}
	if rep.Summary[5].Detail != "12.35 Cr" {
		t.Errorf("volume detail: got %q", rep.Summary[5].Detail)
	}

	if len(rep.Dividends) != 1 || rep.Dividends[0].Text != "2025-06-15 — ₹8.5" {
		t.Errorf("Dividends: got %+v", rep.Dividends)
	}
	if len(rep.Splits) != 0 {
		t.Errorf("Splits: got %+v", rep.Splits)
	}

	if len(rep.News) != 1 {
		t.Fatalf("News: got %d cards", len(rep.News))
	}
	b := rep.News[0].Badge
	if b.Label != "negative" || b.Tone != models.SentimentNegative || b.Color != "red" {
		t.Errorf("Badge: got %+v", b)
	}
}

func TestBuildSplitsAndOrder(t *testing.T) {
	r := sampleResult()
	r.Events.Dividends = []models.Dividend{
		{Date: "2025-06-20", Amount: 2},
		{Date: "2025-06-05", Amount: 10.25},
	}
	r.Events.Splits = []models.Split{{Date: "2025-06-10", SplitRatio: 2}, {Date: "2025-06-11", SplitRatio: 1.5}}

	rep := Build(sampleQuery(), r)

	wantDiv := []string{"2025-06-20 — ₹2", "2025-06-05 — ₹10.25"}
	for i, w := range wantDiv {
		if rep.Dividends[i].Text != w {
			t.Errorf("Dividends[%d]: got %q, want %q", i, rep.Dividends[i].Text, w)
		}
	}
	wantSplit := []string{"2025-06-10 — 2:1", "2025-06-11 — 1.5:1"}
	for i, w := range wantSplit {
		if rep.Splits[i].Text != w {
			t.Errorf("Splits[%d]: got %q, want %q", i, rep.Splits[i].Text, w)
		}
	}
}

func TestBuildEmptyLists(t *testing.T) {
	r := &models.AnalysisResult{
		StockSymbol:  "TCS.NS",
		PriceSummary: &models.PriceSummary{GainLossPercent: models.Float(-2.75)},
	}
	q := sampleQuery()
	q.Symbol = "TCS.NS"

	rep := Build(q, r)
	if rep.Dividends == nil || rep.Splits == nil || rep.News == nil {
		t.Error("sections should be empty, not nil")
	}
	if len(rep.Dividends)+len(rep.Splits)+len(rep.News) != 0 {
		t.Errorf("expected empty sections: %+v", rep)
	}
	if rep.Summary[2].Value != "-2.75%" || rep.Summary[2].Class != "negative" {
		t.Errorf("gain field: %+v", rep.Summary[2])
	}
}

func TestBuildNilResult(t *testing.T) {
	rep := Build(sampleQuery(), nil)
	if rep.Header != "RELIANCE.NS (2025-06-01 to 2025-06-30)" {
		t.Errorf("Header: got %q", rep.Header)
	}
	if len(rep.Summary) != 0 {
		t.Errorf("Summary: got %+v", rep.Summary)
	}
}

func TestBuildHeaderUsesQuery(t *testing.T) {
	r := sampleResult()
	r.StockSymbol = "RELIANCE"
	q := sampleQuery()
	q.EndDate = models.NewDate(2025, 6, 15)

	rep := Build(q, r)
	if rep.Header != "RELIANCE.NS (2025-06-01 to 2025-06-15)" {
		t.Errorf("Header: got %q", rep.Header)
	}
	if rep.Symbol != "RELIANCE.NS" {
		t.Errorf("Symbol: got %q", rep.Symbol)
	}
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		in    models.Sentiment
		label string
		tone  models.Sentiment
		color string
	}{
		{"positive", "positive", models.SentimentPositive, "green"},
		{"POSITIVE", "positive", models.SentimentPositive, "green"},
		{"Negative", "negative", models.SentimentNegative, "red"},
		{"neutral", "neutral", models.SentimentNeutral, "gray"},
		{"mixed", "neutral", models.SentimentNeutral, "gray"},
		{"", "neutral", models.SentimentNeutral, "gray"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			b := BadgeFor(tt.in)
			if b.Label != tt.label || b.Tone != tt.tone || b.Color != tt.color {
				t.Errorf("BadgeFor(%q) = %+v", tt.in, b)
			}
		})
	}
}

func TestBadgeForIgnoresCase(t *testing.T) {
	want := BadgeFor("positive")
	for _, in := range []models.Sentiment{"Positive", "POSITIVE", " positive "} {
		if got := BadgeFor(in); got != want {
			t.Errorf("BadgeFor(%q) = %+v, want %+v", in, got, want)
		}
	}

	badgeHTML := func(s models.Sentiment) string {
		st := loadedState()
		st.Result.News[0].Sentiment = s
		html, err := GenerateHTML(NewPage(sampleQuery(), st))
		if err != nil {
			t.Fatalf("GenerateHTML: %v", err)
		}
		out, err := goquery.OuterHtml(parseHTML(t, html).Find("#news .badge"))
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	base := badgeHTML("positive")
	if !strings.Contains(base, ">positive<") {
		t.Errorf("badge: got %s", base)
	}
	for _, in := range []models.Sentiment{"Positive", "POSITIVE"} {
		if got := badgeHTML(in); got != base {
			t.Errorf("badge for %q: got %s, want %s", in, got, base)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" html ", FormatHTML, false},
		{"", FormatText, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// HTML
// ════════════════════════════════════════════════════════════════════

func loadedState() view.State {
	q := sampleQuery()
	return view.State{Phase: view.PhaseLoaded, Query: &q, Result: sampleResult(), RequestID: "req-1", Seq: 1}
}

func TestGenerateHTMLLoaded(t *testing.T) {
	html, err := GenerateHTML(NewPage(sampleQuery(), loadedState()))
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	doc := parseHTML(t, html)

	if got := doc.Find("h2.report-header").Text(); got != "RELIANCE.NS (2025-06-01 to 2025-06-30)" {
		t.Errorf("header: got %q", got)
	}
	if doc.Find("#status").Length() != 0 {
		t.Error("loaded page should not show a status message")
	}

	var labels, values []string
	doc.Find("#summary .field").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, s.Find(".label").Text())
		values = append(values, s.Find(".value").Text())
	})
	if strings.Join(labels, "|") != "Start Price|End Price|% Gain/Loss|High|Low|Volume" {
		t.Errorf("labels: got %v", labels)
	}
	if values[2] != "5%" {
		t.Errorf("gain value: got %q", values[2])
	}

	if got := strings.TrimSpace(doc.Find("#dividends .event").Text()); got != "2025-06-15 — ₹8.5" {
		t.Errorf("dividend: got %q", got)
	}
	if doc.Find("#splits .event").Length() != 0 {
		t.Error("splits section should be empty")
	}

	card := doc.Find("#news .card")
	if card.Length() != 1 {
		t.Fatalf("news cards: got %d", card.Length())
	}
	link := card.Find("a")
	if href, _ := link.Attr("href"); href != "https://example.com/a" || link.Text() != "Reliance shares slip" {
		t.Errorf("link: %q -> %q", link.Text(), href)
	}
	if card.Find(".source").Text() != "Mint" || card.Find(".published").Text() != "2025-06-20T09:30:00Z" {
		t.Errorf("meta: %q %q", card.Find(".source").Text(), card.Find(".published").Text())
	}
	badge := card.Find(".badge")
	if !badge.HasClass("badge-red") || badge.Text() != "negative" {
		t.Errorf("badge: class=%q text=%q", badge.AttrOr("class", ""), badge.Text())
	}
}

func TestGenerateHTMLStatusMessages(t *testing.T) {
	tests := []struct {
		name  string
		state view.State
		want  string
	}{
		{"idle", view.State{Phase: view.PhaseIdle}, MessageIdle},
		{"loading", view.State{Phase: view.PhaseLoading}, MessageLoading},
		{"failed", view.State{Phase: view.PhaseFailed, Failure: &view.Failure{Kind: analysis.KindService, Message: "analysis service returned 500 Internal Server Error"}},
			"Analysis failed (service): analysis service returned 500 Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := GenerateHTML(NewPage(sampleQuery(), tt.state))
			if err != nil {
				t.Fatal(err)
			}
			doc := parseHTML(t, html)
			status := doc.Find("#status")
			if status.Text() != tt.want {
				t.Errorf("status: got %q, want %q", status.Text(), tt.want)
			}
			if !status.HasClass(string(tt.state.Phase)) {
				t.Errorf("status class: got %q", status.AttrOr("class", ""))
			}
			if doc.Find("main.report").Length() != 0 {
				t.Error("report must only render when loaded")
			}
			if v, _ := doc.Find("input[name=stock_symbol]").Attr("value"); v != "RELIANCE.NS" {
				t.Errorf("form symbol: got %q", v)
			}
		})
	}
}

func TestGenerateHTMLEscapesContent(t *testing.T) {
	st := loadedState()
	st.Result.News[0].Title = "<script>alert(1)</script>"
	st.Result.News[0].URL = "javascript:alert(1)"

	html, err := GenerateHTML(NewPage(sampleQuery(), st))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("title must be escaped")
	}
	if strings.Contains(html, `href="javascript:`) {
		t.Error("unsafe URL must be filtered")
	}
}

func TestGenerateHTMLLiveAndInputError(t *testing.T) {
	p := NewPage(sampleQuery(), view.State{Phase: view.PhaseIdle})
	p.Live = true
	p.WSPath = "/api/v1/ws"
	p.InputError = "stock symbol is required"

	html, err := GenerateHTML(p)
	if err != nil {
		t.Fatal(err)
	}
	doc := parseHTML(t, html)
	if ws, _ := doc.Find("script").Attr("data-ws"); ws != "/api/v1/ws" {
		t.Errorf("data-ws: got %q", ws)
	}
	if doc.Find(".input-error").Text() != "stock symbol is required" {
		t.Errorf("input error: got %q", doc.Find(".input-error").Text())
	}
}

// ════════════════════════════════════════════════════════════════════
// Text and RSS
// ════════════════════════════════════════════════════════════════════

func TestGenerateText(t *testing.T) {
	out := GenerateText(Build(sampleQuery(), sampleResult()))
	for _, want := range []string{
		"RELIANCE.NS (2025-06-01 to 2025-06-30)",
		"% Gain/Loss",
		"5%",
		"2025-06-15 — ₹8.5",
		"No splits in this period.",
		"[NEGATIVE] Reliance shares slip",
		"Mint | 2025-06-20T09:30:00Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestGenerateTextEmpty(t *testing.T) {
	out := GenerateText(Build(sampleQuery(), &models.AnalysisResult{StockSymbol: "X", PriceSummary: &models.PriceSummary{}}))
	for _, want := range []string{"No dividends in this period.", "No news for this period."} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestNewsFeed(t *testing.T) {
	r := sampleResult()
	r.News = append(r.News, models.NewsArticle{Title: "Jio adds subscribers", Sentiment: "POSITIVE", PublishedAt: "yesterday"})

	data, err := NewsFeed(Build(sampleQuery(), r), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewsFeed: %v", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		t.Fatalf("parsing feed: %v", err)
	}
	if feed.FeedType != "rss" {
		t.Errorf("FeedType: got %q", feed.FeedType)
	}
	if !strings.HasPrefix(feed.Title, "RELIANCE.NS (2025-06-01 to 2025-06-30)") {
		t.Errorf("Title: got %q", feed.Title)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("Items: got %d", len(feed.Items))
	}

	first := feed.Items[0]
	if first.Title != "Reliance shares slip" || first.Link != "https://example.com/a" {
		t.Errorf("first item: %q %q", first.Title, first.Link)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "negative" {
		t.Errorf("first categories: %v", first.Categories)
	}
	if first.GUID != "https://example.com/a" {
		t.Errorf("first guid: got %q", first.GUID)
	}
	if first.PublishedParsed == nil || first.PublishedParsed.Day() != 20 {
		t.Errorf("first published: %v", first.PublishedParsed)
	}

	second := feed.Items[1]
	if len(second.Categories) != 1 || second.Categories[0] != "positive" {
		t.Errorf("second categories: %v", second.Categories)
	}
	if second.Published != "yesterday" {
		t.Errorf("second published: got %q", second.Published)
	}
}

func TestNewsFeedEmpty(t *testing.T) {
	data, err := NewsFeed(Build(sampleQuery(), &models.AnalysisResult{StockSymbol: "X", PriceSummary: &models.PriceSummary{}}), "http://localhost/")
	if err != nil {
		t.Fatal(err)
	}
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(feed.Items) != 0 {
		t.Errorf("Items: got %d", len(feed.Items))
	}
}
