package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/config"
	"github.com/litescript/ls-houses/internal/store"
)

var (
	listLimit int
	forceInit bool
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Manage the chart journal",
}

var chartsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved charts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(db *store.DB) error {
			charts, err := db.List(cmd.Context(), listLimit)
			if err != nil {
				return err
			}
			if jsonOut {
				if charts == nil {
					charts = []*chart.Chart{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(charts)
			}
			chart.WriteList(cmd.OutOrStdout(), charts)
			return nil
		})
	},
}

var chartsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid chart id %q", args[0])
		}
		return withStore(func(db *store.DB) error {
			c, err := db.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printChart(cmd.OutOrStdout(), c)
		})
	},
}

var chartsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid chart id %q", args[0])
		}
		return withStore(func(db *store.DB) error {
			if err := db.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted chart %s\n", id)
			return nil
		})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Writes the built-in defaults to --config, or to the per-user config
directory when no path is given. An existing file is kept unless --force.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigLoad: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	chartsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of charts")
	chartsCmd.AddCommand(chartsListCmd, chartsShowCmd, chartsDeleteCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)

	rootCmd.AddCommand(chartsCmd, configCmd)
}

func withStore(fn func(db *store.DB) error) error {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
