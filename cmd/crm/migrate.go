package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-CRM/internal/setup"
	"github.com/m04kA/SMC-CRM/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить SQL миграции",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	migrator := setup.NewMigrator(a.db, a.txManager, migrations.FS, a.log)
	applied, err := migrator.Up(ctx)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	}
	for _, version := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", version)
	}
	return nil
}
