package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Фоновые задачи",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать зарегистрированные задачи",
	RunE:  runJobsList,
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Запустить задачу один раз",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsRun,
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRunCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, args []string) error {
	svc, a, err := jobsServices(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range svc.scheduler.Names() {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runJobsRun(cmd *cobra.Command, args []string) error {
	svc, a, err := jobsServices(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := svc.scheduler.RunJob(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Job %s finished\n", args[0])
	return nil
}

func jobsServices(cmd *cobra.Command) (*services, *app, error) {
	ctx := cmd.Context()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := a.connectRedis(ctx); err != nil {
		a.Close()
		return nil, nil, err
	}

	svc, err := a.buildServices(a.buildRepositories())
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return svc, a, nil
}
