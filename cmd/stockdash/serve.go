package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockdash/api"
	"github.com/seenimoa/stockdash/internal/analysis"
	"github.com/seenimoa/stockdash/internal/query"
	"github.com/seenimoa/stockdash/internal/view"
)

// --- Serve Command (dashboard + API server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if host, _ := cmd.Flags().GetString("host"); host != "" {
			cfg.API.Host = host
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		form, err := query.NewFormFromConfig(cfg.Query)
		if err != nil {
			return fmt.Errorf("invalid default query: %w", err)
		}
		client := analysis.NewClient(cfg.Service, logger)
		ctrl := view.NewController(form, view.NewMachine(), client, logger)

		srv := api.NewServer(cfg, ctrl, logger)
		fmt.Printf("🌐 stockdash dashboard on http://%s\n", cfg.API.Addr())
		fmt.Printf("   analysis service: %s\n", cfg.Service.URL)
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides api.host)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}
