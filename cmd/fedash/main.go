// fedash serves and queries modeled 2030 outcomes of Fe biofortification
// per country, region and scenario.
//
// Usage:
//
//	fedash serve --config fedash.yaml
//	fedash query --region "South Asia" --scenario high --metric dalys_saved
//	fedash values --field region
//	fedash config init --config fedash.yaml
package main

import (
	"fmt"
	"os"

	"fedash/internal/config"
	"fedash/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	dataPath   string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fedash",
	Short: "Fe biofortification dashboard backend",
	Long: `fedash loads a precomputed CSV of modeled iron biofortification outcomes
(relative iron-deficiency reduction and DALYs saved by 2030, per country,
region and scenario) and answers dashboard filter selections.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataPath != "" {
			cfg.Data.Path = dataPath
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		logger, err = logging.New(cfg.Logging)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fedash.yaml", "path to YAML config (missing file uses defaults)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset CSV path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(serveCmd, queryCmd, valuesCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
