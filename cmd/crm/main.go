package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "crm",
	Short: "SMC-CRM - лиды, возможности и встречи",
	Long: `SMC-CRM ведёт лиды и возможности продаж, записывает клиентов на встречи
и ставит в очередь уведомления. Команда serve запускает HTTP API и планировщик.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "путь к файлу конфигурации")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
