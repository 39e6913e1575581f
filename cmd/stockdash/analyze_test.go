package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/seenimoa/stockdash/internal/analysis"
	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/query"
	"github.com/seenimoa/stockdash/internal/view"
	"github.com/seenimoa/stockdash/pkg/models"
)

type stubAnalyzer struct {
	got models.Query
	err error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, q models.Query) (*models.AnalysisResult, error) {
	s.got = q
	if s.err != nil {
		return nil, s.err
	}
	return &models.AnalysisResult{
		StockSymbol:  q.Symbol,
		PriceSummary: &models.PriceSummary{StartPrice: models.Float(1400), EndPrice: models.Float(1470), GainLossPercent: models.Float(5)},
		Events:       models.Events{Dividends: []models.Dividend{{Date: "2025-06-15", Amount: 8.5}}},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Query: config.QueryConfig{Symbol: "RELIANCE.NS", StartDate: "2025-06-01", EndDate: "2025-06-30"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunAnalyzeText(t *testing.T) {
	stub := &stubAnalyzer{}
	var out bytes.Buffer

	err := runAnalyze(context.Background(), testConfig(), stub, analyzeOptions{Symbol: "TCS.NS", To: "2025-06-15"}, &out, discardLogger())
	if err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	if stub.got.Label() != "TCS.NS (2025-06-01 to 2025-06-15)" {
		t.Errorf("query: got %q", stub.got.Label())
	}
	for _, want := range []string{"TCS.NS (2025-06-01 to 2025-06-15)", "2025-06-15 — ₹8.5", "5%"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunAnalyzeJSON(t *testing.T) {
	var out bytes.Buffer
	err := runAnalyze(context.Background(), testConfig(), &stubAnalyzer{}, analyzeOptions{Format: "json"}, &out, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Phase  view.Phase `json:"phase"`
		Report struct {
			Header string `json:"header"`
		} `json:"report"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if got.Phase != view.PhaseLoaded || got.Report.Header != "RELIANCE.NS (2025-06-01 to 2025-06-30)" {
		t.Errorf("output: %+v", got)
	}
}

func TestRunAnalyzeHTML(t *testing.T) {
	var out bytes.Buffer
	err := runAnalyze(context.Background(), testConfig(), &stubAnalyzer{}, analyzeOptions{Format: "html"}, &out, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `<h2 class="report-header">RELIANCE.NS (2025-06-01 to 2025-06-30)</h2>`) {
		t.Error("html output missing report header")
	}
	if strings.Contains(out.String(), "<script") {
		t.Error("standalone html must not load the push script")
	}
}

func TestRunAnalyzeFailure(t *testing.T) {
	stub := &stubAnalyzer{err: &analysis.Error{Kind: analysis.KindNetwork, Message: "could not reach analysis service"}}
	var out bytes.Buffer

	err := runAnalyze(context.Background(), testConfig(), stub, analyzeOptions{}, &out, discardLogger())
	if err == nil || err.Error() != "Analysis failed (network): could not reach analysis service" {
		t.Fatalf("error: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("text output on failure should be empty, got %q", out.String())
	}
}

func TestRunAnalyzeInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		opts analyzeOptions
	}{
		{"bad date", analyzeOptions{From: "June 1"}},
		{"end before start", analyzeOptions{From: "2025-07-01"}},
		{"bad format", analyzeOptions{Format: "pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAnalyzer{}
			err := runAnalyze(context.Background(), testConfig(), stub, tt.opts, io.Discard, discardLogger())
			if err == nil {
				t.Fatal("expected an error")
			}
			if stub.got.Symbol != "" {
				t.Error("analyzer must not be called")
			}
		})
	}
}

func TestRunAnalyzeEndBeforeStartIsInvalidQuery(t *testing.T) {
	err := runAnalyze(context.Background(), testConfig(), &stubAnalyzer{}, analyzeOptions{To: "2025-05-01"}, io.Discard, discardLogger())
	if !errors.Is(err, query.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}
