package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-CRM/internal/setup"
)

var fixturesCmd = &cobra.Command{
	Use:   "install-fixtures",
	Short: "Заполнить справочники значениями по умолчанию",
	Long: `Добавляет отсутствующие источники лидов, причины потери, типы возможностей
и корни деревьев территорий и продавцов. Повторный запуск ничего не меняет.`,
	RunE: runFixtures,
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
}

func runFixtures(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	repos := a.buildRepositories()
	installer := setup.NewInstaller(repos.masters, repos.territories, repos.salesPersons, a.txManager, a.log)

	result, err := installer.InstallFixtures(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d records\n", result.Inserted)
	for _, root := range result.Roots {
		fmt.Fprintf(cmd.OutOrStdout(), "Created root %s\n", root)
	}
	return nil
}
