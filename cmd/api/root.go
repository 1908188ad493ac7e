package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/buildboard/buildboard-backend/config"
	"github.com/buildboard/buildboard-backend/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "buildboard-api",
	Short:         "Construction project board API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Init(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, schemaCmd, adminCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
