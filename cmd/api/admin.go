package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildboard/buildboard-backend/internal/auth"
	"github.com/buildboard/buildboard-backend/internal/bootstrap"
	"github.com/buildboard/buildboard-backend/internal/users"
)

var (
	adminEmail     string
	adminPassword  string
	adminFirstName string
	adminLastName  string
	adminStdin     bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator account commands",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account, or promote and reset an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := auth.NormalizeEmail(adminEmail)
		if email == "" || !strings.Contains(email, "@") {
			return fmt.Errorf("--email is required")
		}

		password := adminPassword
		if adminStdin {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN, MaxConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()

		u, err := users.NewRepo(pool).EnsureAdmin(ctx, email, hash, strings.TrimSpace(adminFirstName), strings.TrimSpace(adminLastName))
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	f := adminCreateCmd.Flags()
	f.StringVar(&adminEmail, "email", "", "admin email address")
	f.StringVar(&adminPassword, "password", "", "admin password")
	f.StringVar(&adminFirstName, "first-name", "", "first name")
	f.StringVar(&adminLastName, "last-name", "", "last name")
	f.BoolVar(&adminStdin, "stdin", false, "read the password from stdin")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
}
