package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-CRM/internal/setup"
)

var patchListOnly bool

var patchCmd = &cobra.Command{
	Use:   "patch [name]",
	Short: "Применить патч данных",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPatch,
}

func init() {
	patchCmd.Flags().BoolVarP(&patchListOnly, "list", "l", false, "показать доступные патчи")
	rootCmd.AddCommand(patchCmd)
}

func runPatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	repos := a.buildRepositories()
	patcher := setup.NewPatcher(repos.leads, repos.feedback, a.txManager, a.log)

	if patchListOnly || len(args) == 0 {
		for _, name := range patcher.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	updated, err := patcher.Run(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Patch %s: %d rows updated\n", args[0], updated)
	return nil
}
