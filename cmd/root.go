package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "golang-backtest",
	Short: "Trading strategy backtest engine",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(migrateCmd)
}
