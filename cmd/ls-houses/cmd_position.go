package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-houses/internal/chart"
)

var positionFlags chartFlags

var positionCmd = &cobra.Command{
	Use:   "position <longitude> [latitude]",
	Short: "Locate an ecliptic point in the houses of a chart",
	Long: `Prints the house position of an ecliptic point: the house it falls in
and how far through the house it is, as a value in [1, 13).

The ecliptic latitude defaults to 0.

Examples:
  ls-houses position 130 --armc 10 --lat 48
  ls-houses position 90 10 -s koch --lat 60 --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPosition,
}

func init() {
	positionFlags.register(positionCmd)
	rootCmd.AddCommand(positionCmd)
}

func runPosition(cmd *cobra.Command, args []string) error {
	lon, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[0])
	}
	var lat float64
	if len(args) == 2 {
		if lat, err = strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("invalid latitude %q", args[1])
		}
	}

	req, fallback, err := positionFlags.request(cmd, time.Now())
	if err != nil {
		return err
	}
	svc := chartService(fallback)
	c, err := svc.Compute(req)
	if err != nil {
		return err
	}
	p, err := svc.Place(c, lon, lat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return p.WriteJSON(out, units())
	}
	chart.WritePlacement(out, p, units())
	return nil
}
