package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/store"
)

// chartFlags are the inputs shared by every command that builds a chart.
type chartFlags struct {
	name     string
	when     string
	armc     float64
	lat      float64
	lon      float64
	eps      float64
	system   string
	fallback string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.system, "system", "s", "", "House system code or name (default from config)")
	fs.Float64Var(&f.lat, "lat", 0, "Geographic latitude, north positive (default from config)")
	fs.Float64Var(&f.lon, "lon", 0, "Geographic longitude, east positive (default from config)")
	fs.Float64Var(&f.armc, "armc", 0, "Sidereal time as an angle; replaces the time")
	fs.Float64Var(&f.eps, "eps", 0, "Obliquity of the ecliptic (default true obliquity of the time)")
	fs.StringVarP(&f.when, "time", "t", "now", "UTC time as RFC 3339, 2006-01-02T15:04, or now")
	fs.StringVar(&f.fallback, "fallback", "", "Policy for undefined systems: porphyry or none")
	fs.StringVar(&f.name, "name", "", "Chart name")
}

// request builds a chart request from flags layered over the config.
func (f *chartFlags) request(cmd *cobra.Command, now time.Time) (chart.Request, houses.FallbackPolicy, error) {
	sysName := cfg.Chart.System
	if f.system != "" {
		sysName = f.system
	}
	sys, err := houses.ParseSystem(sysName)
	if err != nil {
		return chart.Request{}, 0, err
	}

	fbName := cfg.Chart.Fallback
	if f.fallback != "" {
		fbName = f.fallback
	}
	fallback, err := houses.ParseFallback(fbName)
	if err != nil {
		return chart.Request{}, 0, err
	}

	req := chart.Request{
		Name:      f.name,
		System:    sys,
		Latitude:  cfg.Chart.Latitude,
		Longitude: cfg.Chart.Longitude,
	}

	flags := cmd.Flags()
	if flags.Changed("lat") {
		req.Latitude = f.lat
	}
	if flags.Changed("lon") {
		req.Longitude = f.lon
	}
	if flags.Changed("armc") {
		armc := f.armc
		req.ARMC = &armc
	}
	if flags.Changed("eps") {
		eps := f.eps
		req.Obliquity = &eps
	}
	if req.ARMC == nil || flags.Changed("time") {
		t, err := parseTime(f.when, now)
		if err != nil {
			return chart.Request{}, 0, err
		}
		req.Time = &t
	}
	return req, fallback, nil
}

// parseTime accepts "now", RFC 3339, or a UTC date with optional minutes.
func parseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return now.UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC 3339, 2006-01-02T15:04 or now)", s)
}

// chartService builds a chart service from the config and a fallback policy.
func chartService(fallback houses.FallbackPolicy) *chart.Service {
	opts := append(cfg.EngineOptions(), houses.WithFallback(fallback), houses.WithTrace(appLog.Tracer()))
	return chart.NewService(houses.New(opts...), appLog)
}

var (
	cuspsFlags    chartFlags
	saveChart     bool
	watchInterval time.Duration
)

var cuspsCmd = &cobra.Command{
	Use:   "cusps",
	Short: "Print the twelve house cusps and the angles of a chart",
	Long: `Computes a chart for a time and place, or directly from a sidereal angle.

Examples:
  ls-houses cusps --lat 48.85 --lon 2.35 --time 1990-06-15T04:30:00Z -s koch
  ls-houses cusps --armc 10 --lat 48 --eps 23.4392911 --json
  ls-houses cusps --watch 1m`,
	Args: cobra.NoArgs,
	RunE: runCusps,
}

func init() {
	cuspsFlags.register(cuspsCmd)
	cuspsCmd.Flags().BoolVar(&saveChart, "save", false, "Store the chart in the journal")
	cuspsCmd.Flags().DurationVar(&watchInterval, "watch", 0, "Recompute for the current time at this interval")
	rootCmd.AddCommand(cuspsCmd)
}

func runCusps(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	outputOnce := func(now time.Time) error {
		req, fallback, err := cuspsFlags.request(cmd, now)
		if err != nil {
			return err
		}
		c, err := chartService(fallback).Compute(req)
		if err != nil {
			return err
		}
		if err := printChart(out, c); err != nil {
			return err
		}
		if saveChart {
			return saveToJournal(cmd.Context(), cmd.ErrOrStderr(), c)
		}
		return nil
	}

	if watchInterval == 0 {
		return outputOnce(time.Now())
	}
	if cuspsFlags.when != "now" || cmd.Flags().Changed("armc") {
		return fmt.Errorf("--watch follows the clock and cannot be combined with --time or --armc")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := outputOnce(time.Now()); err != nil {
		return err
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			fmt.Fprintln(out)
			if err := outputOnce(t); err != nil {
				appLog.Error("compute failed: %v", err)
			}
		}
	}
}

func printChart(w io.Writer, c *chart.Chart) error {
	if jsonOut {
		return c.WriteJSON(w, units())
	}
	c.WriteTable(w, units())
	return nil
}

func saveToJournal(ctx context.Context, w io.Writer, c *chart.Chart) error {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := db.Save(ctx, c); err != nil {
		return err
	}
	fmt.Fprintf(w, "saved chart %s\n", c.ID)
	return nil
}
