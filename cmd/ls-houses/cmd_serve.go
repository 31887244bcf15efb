package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-houses/internal/api"
	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/state"
	"github.com/litescript/ls-houses/internal/store"
)

var (
	serveAddr    string
	serveNoStore bool
)

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List the supported house systems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !jsonOut {
			chart.WriteSystems(out)
			return nil
		}
		list := make([]api.SystemInfo, 0, len(houses.Systems))
		for _, sys := range houses.Systems {
			list = append(list, api.SystemInfo{Code: sys.Code(), Name: sys.String()})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve house computations and the chart journal over HTTP",
	Long: `Starts the HTTP service:

  GET    /v1/health
  GET    /v1/systems
  GET    /v1/houses?system=K&lat=48&armc=10&eps=23.44
  GET    /v1/position?elon=130&elat=0&lat=48&time=2026-01-01T12:00:00Z
  GET    /v1/events
  POST   /v1/charts
  GET    /v1/charts
  GET    /v1/charts/:id
  DELETE /v1/charts/:id
  GET    /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "Disable the chart journal")
	rootCmd.AddCommand(systemsCmd, serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}

	var db *store.DB
	if !serveNoStore {
		var err error
		if db, err = store.Open(cfg.Store.Path); err != nil {
			return err
		}
		defer db.Close()
	}

	stateCfg := state.DefaultConfig()
	stateCfg.System = cfg.HouseSystem()
	stateCfg.Iterations = cfg.Chart.Iterations
	stateCfg.Fallback, _ = houses.ParseFallback(cfg.Chart.Fallback)
	stateCfg.Trace = appLog.Tracer()

	deps := &api.Dependencies{
		Store:  db,
		State:  state.NewManager(stateCfg),
		Log:    appLog,
		Chart:  cfg.Chart,
		Server: cfg.Server,
		Trace:  appLog.Tracer(),
	}

	appLog.Info("listening on %s", cfg.Server.Addr)
	if db != nil {
		appLog.Info("chart journal at %s", cfg.Store.Path)
	}
	err := api.Serve(cmd.Context(), api.NewApp(deps), cfg.Server.Addr)
	appLog.Info("server stopped")
	return err
}
