package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file operations",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to --config",
	Long: `Writes the configuration fedash would run with (defaults, then the existing
file, then FEDASH_* environment and flag overrides) as YAML to the --config path.
An existing file is kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
	return nil
}
