// Package api serves house computations and the chart journal over HTTP.
package api

import (
	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/config"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/logging"
	"github.com/litescript/ls-houses/internal/state"
	"github.com/litescript/ls-houses/internal/store"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Store  *store.DB      // nil disables the /v1/charts routes
	State  *state.Manager // optional event log
	Log    *logging.Logger
	Chart  config.ChartConfig
	Server config.ServerConfig
	Trace  houses.TraceFunc
}

// service builds a chart service honoring a per-request fallback policy.
func (d *Dependencies) service(fallback houses.FallbackPolicy) *chart.Service {
	opts := []houses.Option{
		houses.WithRefinementIterations(d.Chart.Iterations),
		houses.WithFallback(fallback),
	}
	if d.Trace != nil {
		opts = append(opts, houses.WithTrace(d.Trace))
	}
	return chart.NewService(houses.New(opts...), d.logger())
}

func (d *Dependencies) logger() *logging.Logger {
	if d.Log == nil {
		return logging.Discard()
	}
	return d.Log
}
