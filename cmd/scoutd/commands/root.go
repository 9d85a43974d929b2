package commands

import (
	"github.com/spf13/cobra"

	"github.com/farmhand-data/scout.report/internal/config"
	"github.com/farmhand-data/scout.report/internal/monitoring"
	"github.com/farmhand-data/scout.report/internal/version"
)

var (
	configFile string
	dbPath     string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scoutd",
	Short: "Scouting data server",
	Long: `scoutd stores scouting records collected in the field, serves chart
aggregations over HTTP, and imports and exports data via QR payloads and
CSV/JSON files.`,
	Version:      version.String(),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
}

// loadConfig resolves the effective configuration from the config file,
// environment and command line flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if verbose {
		cfg.Logging.Verbose = true
	}
	monitoring.SetVerbose(cfg.Logging.Verbose)
	return cfg, nil
}
