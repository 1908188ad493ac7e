package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildboard/buildboard-backend/internal/storage/postgres"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Database schema commands",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return applySchema(cmd.Context())
	},
}

var schemaPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the schema DDL",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), postgres.Schema())
		return err
	},
}

func init() {
	schemaCmd.AddCommand(schemaApplyCmd, schemaPrintCmd)
}
