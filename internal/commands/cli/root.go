// Package cli provides the CLI command structure for go_tr31.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrei-cloud/go_tr31/internal/config"
	"github.com/andrei-cloud/go_tr31/internal/logging"
)

// NewRootCommand creates and returns the root command with all subcommands.
func NewRootCommand() (*cobra.Command, error) {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "go_tr31",
		Short: "TR-31 key block engine, server and utilities",
		Long: `Build, wrap and unwrap ANSI X9.143 / TR-31 version D key blocks,
store them, and serve key block operations over TCP.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Initialize configuration before running any command.
			if err := config.Initialize(cfgFile, cmd.Flags()); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg := config.Get()
			logging.InitLogger(
				strings.EqualFold(strings.TrimSpace(cfg.Log.Level), "debug"),
				strings.EqualFold(strings.TrimSpace(cfg.Log.Format), "human"),
			)

			return nil
		},
	}

	// Add persistent flags that affect all commands.
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default is $HOME/.go_tr31/config.yaml)")

	// Add global flags that can override config file settings.
	rootCmd.PersistentFlags().
		String("log-level", "info", "logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "human", "logging format (human, json)")
	rootCmd.PersistentFlags().String("kbpk", "", "key block protection key in hex")
	rootCmd.PersistentFlags().String("keystore", "", "path to the key block store")

	// Register all commands.
	if err := RegisterCommands(rootCmd); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	return rootCmd, nil
}
