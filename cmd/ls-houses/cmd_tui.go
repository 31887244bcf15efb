package main

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/state"
	"github.com/litescript/ls-houses/internal/ui"
)

var tuiFlags chartFlags

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore house cusps interactively",
	Long: `Starts the interactive view. Without --armc the sidereal time follows
the clock; nudging the ARMC with the arrow keys freezes it and l resumes.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiFlags.register(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

// newSession builds the state manager for the interactive view.
func newSession(cmd *cobra.Command, now time.Time) (*state.Manager, bool, error) {
	req, fallback, err := tuiFlags.request(cmd, now)
	if err != nil {
		return nil, false, err
	}
	in, err := req.Inputs()
	if err != nil {
		return nil, false, err
	}

	stateCfg := state.DefaultConfig()
	stateCfg.Inputs = in
	stateCfg.System = req.System
	stateCfg.Fallback = fallback
	stateCfg.Iterations = cfg.Chart.Iterations
	stateCfg.Trace = appLog.Tracer()

	live := !cmd.Flags().Changed("armc") && !cmd.Flags().Changed("time")
	return state.NewManager(stateCfg), live, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	now := time.Now()
	mgr, live, err := newSession(cmd, now)
	if err != nil {
		return err
	}

	// The view owns the screen; logs still go to the file if one is set.
	quietConsole()

	lon := cfg.Chart.Longitude
	if cmd.Flags().Changed("lon") {
		lon = tuiFlags.lon
	}
	model := ui.New(mgr, ui.Options{Live: live, Longitude: lon})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if err != nil {
		return err
	}

	if m, ok := final.(ui.Model); ok {
		snap := m.Snapshot()
		appLog.Debug("session ended: %s at ARMC %.4f, latitude %.4f (%s)",
			snap.System, snap.Inputs.ARMC, snap.Inputs.Latitude, describeFallback(snap.Fallback))
	}
	return nil
}

func describeFallback(p houses.FallbackPolicy) string {
	if p == houses.FallbackNone {
		return "no fallback"
	}
	return "porphyry fallback"
}
