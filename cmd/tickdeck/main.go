package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tickdeck/internal/config"
	"tickdeck/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "tickdeck",
	Short: "tickdeck - a TickTick task widget for the terminal",
	Long: `tickdeck shows your active TickTick tasks grouped by due date
(Overdue, Today, Tomorrow, Later) and lets you complete them with
immediate feedback, reconciled against the real API outcome.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	},
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	configDir string
	verbose   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default: ~/.config/tickdeck)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(widgetCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
