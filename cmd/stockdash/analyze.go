package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockdash/internal/analysis"
	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/query"
	"github.com/seenimoa/stockdash/internal/report"
	"github.com/seenimoa/stockdash/internal/view"
)

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Fetch and render the analysis of a stock",
	Long: `Run one analysis request against the configured service and print the
report. Symbol and dates default to the configured query.`,
	Example: `  stockdash analyze RELIANCE.NS --from 2025-06-01 --to 2025-06-30
  stockdash analyze TCS.NS --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := analyzeOptions{}
		if len(args) == 1 {
			opts.Symbol = args[0]
		}
		opts.From, _ = cmd.Flags().GetString("from")
		opts.To, _ = cmd.Flags().GetString("to")
		opts.Format, _ = cmd.Flags().GetString("format")

		client := analysis.NewClient(cfg.Service, logger)
		return runAnalyze(cmd.Context(), cfg, client, opts, cmd.OutOrStdout(), logger)
	},
}

func init() {
	analyzeCmd.Flags().String("from", "", "start date YYYY-MM-DD (default: query.start_date)")
	analyzeCmd.Flags().String("to", "", "end date YYYY-MM-DD (default: query.end_date)")
	analyzeCmd.Flags().StringP("format", "f", "text", "output format: text, json or html")
}

type analyzeOptions struct {
	Symbol string
	From   string
	To     string
	Format string
}

// analyzeOutput is the JSON shape of --format json.
type analyzeOutput struct {
	Phase     view.Phase     `json:"phase"`
	RequestID string         `json:"request_id"`
	Report    *report.Report `json:"report,omitempty"`
	Failure   *view.Failure  `json:"failure,omitempty"`
}

// runAnalyze runs one Loading → Loaded/Failed cycle and writes the result
// to out. A failed analysis is rendered and also returned as an error.
func runAnalyze(ctx context.Context, cfg *config.Config, analyzer view.Analyzer, opts analyzeOptions, out io.Writer, logger *slog.Logger) error {
	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	form, err := query.NewFormFromConfig(cfg.Query)
	if err != nil {
		return fmt.Errorf("invalid default query: %w", err)
	}
	edit := query.Edit{}
	if opts.Symbol != "" {
		edit.Symbol = &opts.Symbol
	}
	if opts.From != "" {
		edit.StartDate = &opts.From
	}
	if opts.To != "" {
		edit.EndDate = &opts.To
	}
	if err := form.Apply(edit); err != nil {
		return err
	}

	ctrl := view.NewController(form, view.NewMachine(), analyzer, logger)
	st, err := ctrl.AnalyzeAndWait(ctx)
	if err != nil {
		return err
	}

	if err := render(out, format, st); err != nil {
		return err
	}
	if st.Phase == view.PhaseFailed {
		return fmt.Errorf("%s", report.FailureMessage(st.Failure))
	}
	return nil
}

func render(out io.Writer, format report.Format, st view.State) error {
	var rep *report.Report
	if st.Phase == view.PhaseLoaded && st.Query != nil {
		r := report.Build(*st.Query, st.Result)
		rep = &r
	}

	switch format {
	case report.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeOutput{Phase: st.Phase, RequestID: st.RequestID, Report: rep, Failure: st.Failure})

	case report.FormatHTML:
		if st.Query == nil {
			return fmt.Errorf("no query in state")
		}
		html, err := report.GenerateHTML(report.NewPage(*st.Query, st))
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, html)
		return err

	default:
		if rep == nil {
			// Failures are reported through the returned error.
			return nil
		}
		_, err := io.WriteString(out, report.GenerateText(*rep))
		return err
	}
}
