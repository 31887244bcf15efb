// Command ls-houses computes astrological house cusps and house positions
// from the terminal, as a TUI or as an HTTP service.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/config"
	"github.com/litescript/ls-houses/internal/logging"
	"github.com/litescript/ls-houses/internal/version"
)

var (
	// Global flags
	cfgPath  string
	logLevel string
	logFile  string
	jsonOut  bool
	radians  bool

	cfg    *config.Config
	appLog *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ls-houses",
	Short: "House cusps and positions for eleven house systems",
	Long: `ls-houses computes the twelve house cusps of a chart and the house
position of any ecliptic point, for Placidus, Koch, Porphyry, Regiomontanus,
Campanus, Equal, Vehlow, Topocentric, Alcabitius, Axial and Horizon houses.

Run without arguments on a terminal to start the interactive view. When
stdout is not a terminal, the cusps for the configured site and the current
time are printed instead.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return runTUI(cmd, args)
		}
		return runCusps(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ls-houses v%s\n", version.Version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "Config file (default ./ls-houses.yaml or "+config.DefaultPath()+")")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "Also write logs to this rotating file")
	pf.BoolVar(&jsonOut, "json", false, "Print JSON instead of tables")
	pf.BoolVar(&radians, "radians", false, "Print angles in radians")

	rootCmd.AddCommand(versionCmd)
}

// skipConfigLoad marks commands that run on the built-in defaults.
const skipConfigLoad = "skip-config-load"

// setup loads the configuration and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipConfigLoad] == "true" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Logging.File = logFile
	}
	if radians {
		cfg.Chart.Units = chart.Radians.String()
	}

	fileCfg := logging.FileConfig{}
	if cfg.Logging.File != "" {
		fileCfg = logging.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
	}
	appLog = logging.NewWithFile(logging.ParseLevel(cfg.Logging.Level), fileCfg)
	appLog.SetOutput(cmd.ErrOrStderr())
	return nil
}

// units returns the output units chosen by flags and config.
func units() chart.Units {
	u, err := chart.ParseUnits(cfg.Chart.Units)
	if err != nil {
		return chart.Degrees
	}
	return u
}

// quietConsole stops console logging, for commands that own the screen.
func quietConsole() {
	appLog.SetOutput(io.Discard)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
